package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/buildsafe/safety-backend/internal/auth"
	"github.com/buildsafe/safety-backend/internal/config"
	"github.com/buildsafe/safety-backend/internal/database"
	"github.com/buildsafe/safety-backend/internal/database/migrations"
	"github.com/buildsafe/safety-backend/internal/domain"
	"github.com/buildsafe/safety-backend/internal/repository"
	"github.com/buildsafe/safety-backend/internal/service"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openDB loads the configuration and connects. The caller must Close the service.
func openDB() (*config.Config, database.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	return cfg, db, nil
}

var rootCmd = &cobra.Command{
	Use:          "safetyctl",
	Short:        "Operator tool for the safety checklist backend",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		redacted := *cfg
		if redacted.Database.Password != "" {
			redacted.Database.Password = "********"
		}
		if redacted.Auth.JWTSecret != "" {
			redacted.Auth.JWTSecret = "********"
		}
		if redacted.Blob.S3SecretAccessKey != "" {
			redacted.Blob.S3SecretAccessKey = "********"
		}
		redacted.Auth.TTL = redacted.Auth.TokenTTL.String()
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(redacted)
	},
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		sqlDB, err := db.SQLDB()
		if err != nil {
			return err
		}
		if err := migrations.Up(sqlDB); err != nil {
			return err
		}
		latest, err := migrations.LatestVersion()
		if err != nil {
			return err
		}
		fmt.Printf("Schema is at version %d\n", latest)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the schema matches this binary",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		sqlDB, err := db.SQLDB()
		if err != nil {
			return err
		}
		if err := migrations.CheckStatus(sqlDB); err != nil {
			return err
		}
		fmt.Println("Schema is up to date")
		return nil
	},
}

// user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create the first administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		name, _ := cmd.Flags().GetString("name")
		if password == "" {
			password = os.Getenv("SAFETY_ADMIN_PASSWORD")
		}

		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		users := repository.NewGormUserRepository(db.GetDB())
		admin := service.NewAdminService(users, service.NewAccessGate(users))
		res, err := admin.CreateInitialAdmin(context.Background(), service.CreateUserRequest{
			Email:    email,
			Password: password,
			Name:     name,
		})
		if err != nil {
			return fmt.Errorf("creating admin: %w", err)
		}
		fmt.Printf("Created admin %s (%s)\n", email, *res.UserID)
		return nil
	},
}

// token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage bearer tokens",
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a bearer token for a stored user",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		if cfg.Auth.JWTSecret == "" {
			return errors.New("SAFETY_JWT_SECRET is required")
		}
		if ttl <= 0 {
			ttl = cfg.Auth.TokenTTL
		}

		users := repository.NewGormUserRepository(db.GetDB())
		u, err := users.FindByEmail(context.Background(), email)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("no user with email %s", email)
			}
			return err
		}
		if password != "" && !auth.VerifyPassword(password, u.PasswordHash) {
			return errors.New("password does not match")
		}

		token, err := auth.NewTokenManager(cfg.Auth.JWTSecret, ttl).Mint(u.ID, u.Email)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	// config
	configCmd.AddCommand(configShowCmd)

	// migrate
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	// user
	userCmd.AddCommand(userCreateAdminCmd)
	userCreateAdminCmd.Flags().String("email", "", "Email address of the new admin")
	userCreateAdminCmd.Flags().String("password", "", "Password (defaults to $SAFETY_ADMIN_PASSWORD)")
	userCreateAdminCmd.Flags().String("name", "", "Display name")
	_ = userCreateAdminCmd.MarkFlagRequired("email")
	_ = userCreateAdminCmd.MarkFlagRequired("name")

	// token
	tokenCmd.AddCommand(tokenMintCmd)
	tokenMintCmd.Flags().String("email", "", "Email address of the user")
	tokenMintCmd.Flags().String("password", "", "Optional password to verify before minting")
	tokenMintCmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to the configured TTL)")
	_ = tokenMintCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(tokenCmd)
}
