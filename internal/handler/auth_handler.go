package handler

import (
	"errors"
	"net/http"
	"strings"

	"salons/backend/internal/auth"
	"salons/backend/internal/config"
	"salons/backend/internal/database"
	"salons/backend/internal/models"
	"salons/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Username        string `json:"username" form:"username" binding:"required,max=150" example:"alice"`
	Password        string `json:"password" form:"password" binding:"required,min=8" example:"password123"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" binding:"required,eqfield=Password" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Username string `json:"username" form:"username" binding:"required" example:"alice"`
	Password string `json:"password" form:"password" binding:"required" example:"password123"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       uint   `json:"id" example:"1"`
	Username string `json:"username" example:"alice"`
}

// SessionResponse is returned when a session is opened.
type SessionResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates an account and opens a session right away.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  SessionResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le nom d'utilisateur est requis."})
		return
	}

	var count int64
	if err := database.DB.Model(&models.User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Ce nom d'utilisateur est déjà pris."})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:     input.Username,
		PasswordHash: string(hashedPassword),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}
	zap.L().Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))

	openSession(c, http.StatusCreated, user)
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Checks the credentials and opens a session (cookie and token).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  SessionResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Unknown user and wrong password answer the same way.
	var user models.User
	if err := database.DB.Where("username = ?", strings.TrimSpace(input.Username)).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, models.NewInternalError(err))
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides."})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides."})
		return
	}

	openSession(c, http.StatusOK, user)
}

// LogoutUser godoc
// @Summary      Log out
// @Description  Clears the session cookie.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Router       /auth/logout [post]
func LogoutUser(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.AppConfig.SessionCookie, "", -1, "/", "", config.AppConfig.IsProduction(), true)
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// GetMe godoc
// @Summary      Get current user's info
// @Description  Returns the account of the authenticated user.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /auth/me [get]
func GetMe(c *gin.Context) {
	var user models.User
	if err := database.DB.First(&user, auth.CurrentUserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable."})
		return
	}
	c.JSON(http.StatusOK, buildUserResponse(user))
}

// endregion

// region --- Helpers ---

func openSession(c *gin.Context, status int, user models.User) {
	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	maxAge := int(config.AppConfig.SessionTTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.AppConfig.SessionCookie, token, maxAge, "/", "", config.AppConfig.IsProduction(), true)
	c.JSON(status, SessionResponse{Token: token, User: buildUserResponse(user)})
}

func buildUserResponse(user models.User) UserResponse {
	return UserResponse{ID: user.ID, Username: user.Username}
}

// endregion
