package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mithaimart/internal/flagx"
	"github.com/dmitrijs2005/mithaimart/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations use
// timex.Duration so they can be written as "15m" or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	RedisAddr                   string         `json:"redis_addr"`
	MaxLoginAttempts            int            `json:"max_login_attempts"`
	LoginCooldown               timex.Duration `json:"login_cooldown"`
	AdminEmail                  string         `json:"admin_email"`
	AdminPassword               string         `json:"admin_password"`
}

// parseJson overlays Config with the file named by -c / -config.
// Only keys present in the file override the current values.
// It panics if the file cannot be read or parsed.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{
		EndpointAddrHTTP:            config.EndpointAddrHTTP,
		DatabaseDSN:                 config.DatabaseDSN,
		SecretKey:                   config.SecretKey,
		AccessTokenValidityDuration: timex.Duration{Duration: config.AccessTokenValidityDuration},
		RedisAddr:                   config.RedisAddr,
		MaxLoginAttempts:            config.MaxLoginAttempts,
		LoginCooldown:               timex.Duration{Duration: config.LoginCooldown},
		AdminEmail:                  config.AdminEmail,
		AdminPassword:               config.AdminPassword,
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.RedisAddr = c.RedisAddr
	config.MaxLoginAttempts = c.MaxLoginAttempts
	config.LoginCooldown = c.LoginCooldown.Duration
	config.AdminEmail = c.AdminEmail
	config.AdminPassword = c.AdminPassword
}
