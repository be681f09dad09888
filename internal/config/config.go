package config

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetSessionServiceURL() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Sessions
}

func New() Config {
	return mainConfig{}
}
