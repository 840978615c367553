package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		// bootstrap migrates as part of connecting.
		_, flush, err := bootstrap()
		if err != nil {
			return err
		}
		defer flush()
		zap.L().Info("schema is up to date")
		return nil
	},
}
