package config

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/godror/godror"
)

// OracleConfig holds Oracle database configuration
type OracleConfig struct {
	Host         string
	Port         string
	Service      string
	User         string
	Password     string
	MaxOpenConns int
	MaxIdleConns int
	// Wallet configuration for Oracle Cloud (ADB)
	WalletPath string
	TNSAlias   string
}

// escapeDSNValue escapes backslashes and double quotes in DSN values
func escapeDSNValue(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}

// DSN returns the godror connection string
func (c OracleConfig) DSN() string {
	user := escapeDSNValue(c.User)
	password := escapeDSNValue(c.Password)

	if c.WalletPath != "" && c.TNSAlias != "" {
		tnsAlias := escapeDSNValue(c.TNSAlias)
		walletPath := escapeDSNValue(c.WalletPath)
		return fmt.Sprintf(`user="%s" password="%s" connectString="%s" configDir="%s" walletLocation="%s"`,
			user, password, tnsAlias, walletPath, walletPath)
	}
	return fmt.Sprintf(`user="%s" password="%s" connectString="%s:%s/%s"`,
		user, password, c.Host, c.Port, c.Service)
}

// NewOracleDB opens the booking store pool and verifies it is reachable
func NewOracleDB(ctx context.Context, cfg OracleConfig) (*sql.DB, error) {
	db, err := sql.Open("godror", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
