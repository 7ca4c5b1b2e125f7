package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	DatabaseConfig
	ClientConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Token
	Database
	Client
}

// New loads an optional .env file and then reads every config section from the
// environment. Values already present in the environment win over the .env file.
func New(envFiles ...string) (Config, error) {
	_ = godotenv.Load(envFiles...)

	var c mainConfig
	if err := cleanenv.ReadEnv(&c); err != nil {
		return nil, fmt.Errorf("[config New] cleanenv.ReadEnv: %w", err)
	}
	return c, nil
}

// Description returns the help text listing every supported environment variable.
func Description() string {
	var c mainConfig
	text, err := cleanenv.GetDescription(&c, nil)
	if err != nil {
		return err.Error()
	}
	return text
}
