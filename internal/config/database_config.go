package config

import "time"

type DatabaseConfig interface {
	GetMongoURI() string
	GetMongoDatabase() string
	GetConnectTimeout() time.Duration
	GetRedisAddr() string
	GetRedisPassword() string
	GetCountCacheTTL() time.Duration
}

type Database struct {
	MongoURI       string        `env:"MONGODB_URI" env-default:"mongodb://localhost:27017" env-description:"MongoDB connection string"`
	MongoDatabase  string        `env:"MONGODB_DATABASE" env-default:"crm"`
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT" env-default:"10s"`
	RedisAddr      string        `env:"REDIS_ADDR" env-description:"Redis address for the count cache, empty disables it"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	CountCacheTTL  time.Duration `env:"COUNT_CACHE_TTL" env-default:"10s"`
}

var _ DatabaseConfig = Database{}

func (d Database) GetMongoURI() string {
	return d.MongoURI
}

func (d Database) GetMongoDatabase() string {
	return d.MongoDatabase
}

func (d Database) GetConnectTimeout() time.Duration {
	return d.ConnectTimeout
}

func (d Database) GetRedisAddr() string {
	return d.RedisAddr
}

func (d Database) GetRedisPassword() string {
	return d.RedisPassword
}

func (d Database) GetCountCacheTTL() time.Duration {
	return d.CountCacheTTL
}
