package main

import (
	"github.com/spf13/cobra"

	"secure-rag/internal/auth"
	"secure-rag/internal/db"
	"secure-rag/internal/models"
)

var (
	userLogin    string
	userPassword string
	userRole     string
)

var useraddCmd = &cobra.Command{
	Use:   "useradd",
	Short: "Create or update a login",
	Long: `Stores the login in the users table when database.dsn is set.
Without a database the bcrypt hash is printed for the users section of the config.`,
	Args: cobra.NoArgs,
	RunE: runUseradd,
}

func init() {
	useraddCmd.Flags().StringVar(&userLogin, "login", "", "login")
	useraddCmd.Flags().StringVar(&userPassword, "password", "", "password")
	useraddCmd.Flags().StringVar(&userRole, "role", "", "role, one of the access tiers")
	for _, f := range []string{"login", "password", "role"} {
		_ = useraddCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(useraddCmd)
}

func runUseradd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	hash, err := auth.HashPassword(userPassword)
	if err != nil {
		return err
	}
	user := models.User{Login: userLogin, PasswordHash: hash, Role: models.ParseAccessTier(userRole)}

	bunDB, err := openUserDB(ctx, cfg)
	if err != nil {
		return err
	}
	if bunDB == nil {
		cmd.Printf("users:\n  - login: %s\n    password_hash: %q\n    role: %s\n", user.Login, user.PasswordHash, user.Role)
		return nil
	}
	defer bunDB.Close()

	if err := db.NewUserStore(bunDB).SaveUser(ctx, user); err != nil {
		return err
	}
	cmd.Printf("Saved user %s with role %s\n", user.Login, user.Role)
	return nil
}
