package config

import "os"

const defaultMongoDatabase = "voltahome"

type MongoConfig struct {
	URI      string
	Database string
}

func LoadMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:      os.Getenv("MONGODB_URI"),
		Database: getEnvOrDefault("MONGODB_DATABASE", defaultMongoDatabase),
	}
}

func (c *MongoConfig) Validate() error {
	if c == nil || c.URI == "" {
		return ErrMongoURIMissing
	}
	return nil
}
