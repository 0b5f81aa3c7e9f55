package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()
}

// Config holds everything the server reads from the environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"3001"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

type DatabaseConfig struct {
	Path         string `envconfig:"DB_PATH" default:"./data/bazaar.db"`
	SessionsPath string `envconfig:"SESSIONS_DB_PATH" default:"./data/sessions.db"`
}

type AuthConfig struct {
	JWTSecret           string        `envconfig:"SECRET_KEY" required:"true"`
	TokenTTL            time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	DiscordClientID     string        `envconfig:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string        `envconfig:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURL  string        `envconfig:"DISCORD_REDIRECT_URL" default:"http://localhost:3001/auth/discord/callback"`
	FrontendURL         string        `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// Address returns the listen address in host:port form.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
