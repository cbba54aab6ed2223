package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"secure-rag/internal/config"
	"secure-rag/internal/models"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	Login         string `bun:"login,pk"`
	PasswordHash  string `bun:"password_hash,notnull"`
	Role          string `bun:"role,notnull"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// ConnectDB opens the credential database with the configured driver.
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is required")
	}
	if cfg.Driver == "pq" {
		return sql.Open("postgres", cfg.DSN)
	}
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN))), nil
}

func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*User)(nil)).IfNotExists().Exec(ctx)
	return err
}

func DropUsers(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*User)(nil)).IfExists().Exec(ctx)
	return err
}

// UserStore looks up users in the users table.
type UserStore struct {
	db *bun.DB
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindUser(ctx context.Context, login string) (*models.User, error) {
	var u User
	err := s.db.NewSelect().Model(&u).Where("login = ?", login).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &models.User{
		Login:        u.Login,
		PasswordHash: u.PasswordHash,
		Role:         models.ParseAccessTier(u.Role),
	}, nil
}

// SaveUser inserts the user or replaces the hash and role of an existing login.
func (s *UserStore) SaveUser(ctx context.Context, user models.User) error {
	u := &User{Login: user.Login, PasswordHash: user.PasswordHash, Role: string(user.Role)}
	_, err := s.db.NewInsert().
		Model(u).
		On("CONFLICT (login) DO UPDATE").
		Set("password_hash = EXCLUDED.password_hash").
		Set("role = EXCLUDED.role").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}
