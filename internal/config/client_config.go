package config

import "time"

// ClientConfig holds the settings used by crmctl.
type ClientConfig interface {
	GetAPIBaseURL() string
	GetCredentialsDir() string
	GetPollInterval() time.Duration
	GetRequestTimeout() time.Duration
}

type Client struct {
	APIBaseURL     string        `env:"CRM_API_URL" env-default:"http://localhost:3000"`
	CredentialsDir string        `env:"CRM_CREDENTIALS_DIR" env-description:"Directory for stored sessions, defaults to the user config dir"`
	PollInterval   time.Duration `env:"CRM_POLL_INTERVAL" env-default:"30s"`
	RequestTimeout time.Duration `env:"CRM_REQUEST_TIMEOUT" env-default:"10s"`
}

var _ ClientConfig = Client{}

func (c Client) GetAPIBaseURL() string {
	return c.APIBaseURL
}

func (c Client) GetCredentialsDir() string {
	return c.CredentialsDir
}

func (c Client) GetPollInterval() time.Duration {
	return c.PollInterval
}

func (c Client) GetRequestTimeout() time.Duration {
	return c.RequestTimeout
}
