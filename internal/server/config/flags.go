package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN, or "memory"
//	-s string   token HMAC secret key
//	-t int      session token validity, minutes
//	-r string   Redis address for the login limiter
//	-m int      failed login attempts allowed per window
//	-l int      login limiter window, minutes
//	-e string   admin account email to seed
//	-p string   admin account password to seed
//
// Duration flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-m", "-l", "-e", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "session token validity (in minutes)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address for login limiter")
	fs.IntVar(&config.MaxLoginAttempts, "m", config.MaxLoginAttempts, "failed login attempts per window")
	cooldown := fs.Int("l", int(config.LoginCooldown.Minutes()), "login limiter window (in minutes)")
	fs.StringVar(&config.AdminEmail, "e", config.AdminEmail, "admin email to seed")
	fs.StringVar(&config.AdminPassword, "p", config.AdminPassword, "admin password to seed")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.LoginCooldown = time.Duration(*cooldown) * time.Minute
}
