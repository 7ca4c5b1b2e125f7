package config

import "strings"

type Cors struct {
	Origins []string `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:5173" env-description:"Comma separated CORS origins, * for any"`
}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

func (c Cors) GetAllowedOrigins() AllowedOrigins {
	allowed := make(AllowedOrigins, len(c.Origins))
	for _, origin := range c.Origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			allowed[trimmed] = nullValue{}
		}
	}
	return allowed
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, OPTIONS"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}
