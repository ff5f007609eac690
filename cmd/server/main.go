// Command users-api serves the user account HTTP API.
//
//	@title						Users API
//	@version					1.0
//	@description				Account signup, email verification, sessions, subscription tiers and avatars.
//	@BasePath					/api/users
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the token returned by /login.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:          "users-api",
		Short:        "user accounts backend",
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine; the environment may already be set.
			_ = godotenv.Load(envFile)
			return serve(cmd.Context())
		},
	}
	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before reading the environment")

	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("startup error")
		os.Exit(1)
	}
}
