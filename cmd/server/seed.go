package main

import (
	"context"
	"fmt"

	"salons/backend/internal/database"
	"salons/backend/internal/models"
	"salons/backend/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "password123"

var seedOpts struct {
	users    int
	rooms    int
	channels int
	messages int
	seed     int64
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo users, rooms, channels and messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, flush, err := bootstrap()
		if err != nil {
			return err
		}
		defer flush()
		return seed(cmd.Context(), database.DB, gofakeit.New(seedOpts.seed))
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedOpts.users, "users", 5, "number of users")
	seedCmd.Flags().IntVar(&seedOpts.rooms, "rooms", 3, "number of rooms")
	seedCmd.Flags().IntVar(&seedOpts.channels, "channels", 2, "channels per room")
	seedCmd.Flags().IntVar(&seedOpts.messages, "messages", 20, "messages per room and per channel")
	seedCmd.Flags().Int64Var(&seedOpts.seed, "seed", 0, "random seed (0 picks one)")
}

func seed(ctx context.Context, db *gorm.DB, faker *gofakeit.Faker) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if seedOpts.users < 1 {
		return fmt.Errorf("--users must be at least 1")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := make([]models.User, 0, seedOpts.users)
	for i := 0; i < seedOpts.users; i++ {
		user := models.User{
			Username:     fmt.Sprintf("%s%d", faker.Username(), faker.Number(100, 999)),
			PasswordHash: string(hash),
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	pick := func() models.User { return users[faker.Number(0, len(users)-1)] }

	for i := 0; i < seedOpts.rooms; i++ {
		creator := pick()
		name := fmt.Sprintf("%s %d", faker.HackerNoun(), faker.Number(1, 9999))
		room, err := service.CreateRoom(ctx, db, creator.ID, name, faker.Sentence(8))
		if err != nil {
			return err
		}

		targets := []service.Target{{Room: room}}
		for j := 0; j < seedOpts.channels; j++ {
			channel, err := service.CreateChannel(ctx, db, room, fmt.Sprintf("%s %d", faker.BuzzWord(), j+1), "")
			if err != nil {
				return err
			}
			targets = append(targets, service.Target{Room: room, Channel: channel})
		}

		for _, target := range targets {
			for k := 0; k < seedOpts.messages; k++ {
				input := service.PostInput{Content: faker.Sentence(faker.Number(3, 15))}
				if _, err := service.PostMessage(ctx, db, nil, target, pick().ID, input); err != nil {
					return err
				}
			}
		}
		zap.L().Info("seeded room", zap.String("slug", room.Slug), zap.Uint("creator_id", creator.ID))
	}

	zap.L().Info("seed complete",
		zap.Int("users", len(users)),
		zap.Int("rooms", seedOpts.rooms),
		zap.String("password", seedPassword))
	return nil
}
