package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tontine.backend/internal/config"
	"tontine.backend/internal/domain/entities"
	domainrepo "tontine.backend/internal/domain/repositories"
	pgsource "tontine.backend/internal/infrastructure/datasources/postgres"
	"tontine.backend/internal/infrastructure/repositories"
)

var openPromoteDB = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
	sqlDB, err := pgsource.NewConnection(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{PrepareStmt: false})
}

var openPromoteSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

type promoteDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (domainrepo.AccountRepository, io.Closer, error)
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultPromoteDeps() promoteDeps {
	return promoteDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (domainrepo.AccountRepository, io.Closer, error) {
			db, err := openPromoteDB(cfg.Database)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}
			sqlDB, err := openPromoteSQLDB(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}
			return repositories.NewAccountRepository(db), sqlDB, nil
		},
		out: os.Stdout,
	}
}

func parseEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("--email is required")
	}
	if !strings.Contains(email, "@") {
		return "", fmt.Errorf("invalid email %q", email)
	}
	return email, nil
}

func runAdminPromote(args []string, deps promoteDeps) error {
	def := defaultPromoteDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("admin-promote", flag.ContinueOnError)
	emailFlag := fs.String("email", "", "email of the account to promote (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	email, err := parseEmail(*emailFlag)
	if err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	accounts, closer, err := deps.prepare(deps.loadCfg())
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	ctx := context.Background()
	account, err := accounts.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to load account %s: %w", email, err)
	}

	if account.Role == entities.AccountRoleAdmin {
		_, _ = fmt.Fprintf(deps.out, "%s is already ADMIN\n", email)
		return nil
	}

	account.Role = entities.AccountRoleAdmin
	if err := accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to promote %s: %w", email, err)
	}

	_, _ = fmt.Fprintf(deps.out, "Promoted %s to ADMIN\n", email)
	_, _ = fmt.Fprintf(deps.out, "account_id=%s\n", account.ID.String())
	return nil
}

func main() {
	if err := runAdminPromote(os.Args[1:], defaultPromoteDeps()); err != nil {
		log.Fatal(err)
	}
}
