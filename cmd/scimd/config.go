package main

import (
	"github.com/spf13/pflag"
)

// config holds scimd's command-line flags (grounded on MacroPower-x's
// Config/RegisterFlags split: a plain struct plus a RegisterFlags method).
type config struct {
	Addr         string
	Prefix       string
	BaseURL      string
	LogLevel     string
	LogFormat    string
	Locale       string
	MetricsAddr  string
	BulkMaxOps   int
	BulkMaxBytes int
}

func newConfig() *config {
	return &config{
		Addr:         ":8080",
		Prefix:       "/scim/v2",
		LogLevel:     "info",
		LogFormat:    "text",
		Locale:       "en",
		MetricsAddr:  ":9090",
		BulkMaxOps:   1000,
		BulkMaxBytes: 1 << 20,
	}
}

func (c *config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Addr, "addr", c.Addr, "address to listen on")
	flags.StringVar(&c.Prefix, "prefix", c.Prefix, "path prefix the SCIM API is served under")
	flags.StringVar(&c.BaseURL, "base-url", c.BaseURL, "external base URL used in meta.location and Location headers (defaults to the request's own scheme/host)")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format (text, json)")
	flags.StringVar(&c.Locale, "locale", c.Locale, "locale used to translate error details (en, fr)")
	flags.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "address the /metrics Prometheus endpoint listens on (empty disables it)")
	flags.IntVar(&c.BulkMaxOps, "bulk-max-operations", c.BulkMaxOps, "maximum number of operations accepted in a single Bulk request")
	flags.IntVar(&c.BulkMaxBytes, "bulk-max-payload-size", c.BulkMaxBytes, "maximum size in bytes of a Bulk request body")
}
