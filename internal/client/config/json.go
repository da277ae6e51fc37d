package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mithaimart/internal/flagx"
	"github.com/dmitrijs2005/mithaimart/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify timeouts either as
// strings like "10s" or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	SubmitTimeout      timex.Duration `json:"submit_timeout"`
	SessionDSN         string         `json:"session_dsn"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Keys missing from the file keep their current values.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	jc := JsonConfig{
		ServerEndpointAddr: cfg.ServerEndpointAddr,
		RequestTimeout:     timex.Duration{Duration: cfg.RequestTimeout},
		SubmitTimeout:      timex.Duration{Duration: cfg.SubmitTimeout},
		SessionDSN:         cfg.SessionDSN,
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.RequestTimeout = jc.RequestTimeout.Duration
	cfg.SubmitTimeout = jc.SubmitTimeout.Duration
	cfg.SessionDSN = jc.SessionDSN
}
