package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// AuthServiceConfig is the process-wide configuration of the auth service.
// Every required variable missing from the environment fails Load, which
// keeps the process from serving traffic with a partial configuration.
type AuthServiceConfig struct {
	Host        string   `env:"HOST"         envDefault:"127.0.0.1"`
	Port        int      `env:"PORT"         envDefault:"8000"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`
	FrontendURL string   `env:"FRONTEND_URL,required"`
	MongoDBURI  string   `env:"MONGODB_URI,required"`
	DBName      string   `env:"DB_NAME,required"`

	Token    TokenConfig
	Google   ProviderConfig `envPrefix:"GOOGLE_"`
	FortyTwo ProviderConfig `envPrefix:"FORTYTWO_"`
}

// TokenConfig configures access token signing.
type TokenConfig struct {
	Secret        string `env:"SECRET_KEY,required"`
	Algorithm     string `env:"ALGORITHM,required"`
	ExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"15"`
}

// ExpiresIn returns the access token lifetime as a duration.
func (c TokenConfig) ExpiresIn() time.Duration {
	return time.Duration(c.ExpireMinutes) * time.Minute
}

// ProviderConfig holds the OAuth client credentials of a single provider.
type ProviderConfig struct {
	ClientID     string `env:"CLIENT_ID,required"`
	ClientSecret string `env:"CLIENT_SECRET,required"`
	RedirectURL  string `env:"REDIRECT_URL,required"`
}

// Load parses the configuration from the environment.
func Load() (*AuthServiceConfig, error) {
	var cfg AuthServiceConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return &cfg, nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *AuthServiceConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
