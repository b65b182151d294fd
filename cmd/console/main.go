package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/zlovtnik/homeswift/cmd/console/api"
	"github.com/zlovtnik/homeswift/pkg/auth"
)

const (
	defaultAPIURL  = "http://localhost:8080"
	defaultUser    = "console"
	issuedTokenTTL = 12 * time.Hour
)

// consoleEnv is the environment the console starts from
type consoleEnv struct {
	BaseURL   string
	Token     string
	JWTSecret string
	User      string
}

func loadEnv() consoleEnv {
	env := consoleEnv{
		BaseURL:   os.Getenv("HOMESWIFT_API_URL"),
		Token:     os.Getenv("HOMESWIFT_TOKEN"),
		JWTSecret: os.Getenv("HOMESWIFT_JWT_SECRET"),
		User:      os.Getenv("HOMESWIFT_USER"),
	}
	if env.BaseURL == "" {
		env.BaseURL = defaultAPIURL
	}
	if env.User == "" {
		env.User = defaultUser
	}
	return env
}

// resolveToken uses an explicit token when given, otherwise signs an
// admin token with the shared secret.
func resolveToken(env consoleEnv) (string, error) {
	if env.Token != "" {
		return env.Token, nil
	}
	if env.JWTSecret == "" {
		return "", fmt.Errorf("set HOMESWIFT_TOKEN or HOMESWIFT_JWT_SECRET")
	}
	return auth.IssueToken(env.JWTSecret, env.User, auth.RoleAdmin, issuedTokenTTL)
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	env := loadEnv()
	client, err := api.NewClient(env.BaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	token, err := resolveToken(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	client.SetToken(token)

	p := tea.NewProgram(newModel(client, env.BaseURL, env.User), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
