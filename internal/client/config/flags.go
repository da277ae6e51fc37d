package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the auth server (default from Config)
//	-t int      request timeout in seconds (default from Config)
//	-s int      submit timeout in seconds (default from Config)
//	-d string   session database file (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-s", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the auth server")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	submitTimeout := fs.Int("s", int(cfg.SubmitTimeout.Seconds()), "form submit timeout (in seconds)")
	fs.StringVar(&cfg.SessionDSN, "d", cfg.SessionDSN, "session database file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	cfg.SubmitTimeout = time.Duration(*submitTimeout) * time.Second
}
