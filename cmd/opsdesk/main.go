package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/opsdeskhq/opsdesk/common/environment"
	"github.com/opsdeskhq/opsdesk/common/version"
	"github.com/opsdeskhq/opsdesk/internal/opsdesk/app"
	"github.com/opsdeskhq/opsdesk/internal/opsdesk/matrix"
)

func main() {
	fmt.Printf("OpsDesk Assistant\n")
	fmt.Printf("Version: %s\n", version.Version)
	fmt.Printf("Commit: %s\n", version.GitCommit)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Println()

	// A .env file is a convenience for local development; in production the
	// variables come from the process environment.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded configuration from .env")
	}

	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	assistant, err := app.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize OpsDesk: %v\n", err)
		os.Exit(1)
	}
	defer assistant.Stop()

	if err := assistant.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running OpsDesk: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration from environment variables.
func loadConfig() (*app.Config, error) {
	homeserver, err := environment.RequiredString("MATRIX_HOMESERVER")
	if err != nil {
		return nil, err
	}
	userID, err := environment.RequiredString("MATRIX_USER_ID")
	if err != nil {
		return nil, err
	}
	accessToken, err := environment.RequiredString("MATRIX_ACCESS_TOKEN")
	if err != nil {
		return nil, err
	}
	rooms := environment.StringSliceOr("MATRIX_ROOMS", nil)
	if len(rooms) == 0 {
		return nil, fmt.Errorf("required environment variable %q is not set", "MATRIX_ROOMS")
	}

	return &app.Config{
		DatabasePath:  environment.StringOr("DATABASE_PATH", "./opsdesk.db"),
		SeedPath:      environment.StringOr("OPSDESK_SEED_PATH", ""),
		HTTPAddr:      environment.StringOr("HTTP_ADDR", ""),
		AllowedOrigin: environment.StringOr("DASHBOARD_ORIGIN", ""),
		TypingDelay:   environment.DurationOr("TYPING_DELAY", 800*time.Millisecond),
		Matrix: matrix.Config{
			Homeserver:     homeserver,
			UserID:         userID,
			AccessToken:    accessToken,
			Rooms:          rooms,
			AllowedSenders: environment.StringSliceOr("MATRIX_ALLOWED_SENDERS", nil),
		},
	}, nil
}
