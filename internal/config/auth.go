package config

import "os"

type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
	// AdminAllowList is the raw ADMIN_EMAIL_ALLOWLIST value.
	AdminAllowList string
}

func LoadAuthConfig() *AuthConfig {
	return &AuthConfig{
		JWTSecret:      os.Getenv("AUTH_JWT_SECRET"),
		JWTIssuer:      os.Getenv("AUTH_JWT_ISSUER"),
		AdminAllowList: os.Getenv("ADMIN_EMAIL_ALLOWLIST"),
	}
}

func (c *AuthConfig) Validate() error {
	if c == nil || c.JWTSecret == "" {
		return ErrJWTSecretMissing
	}
	return nil
}
