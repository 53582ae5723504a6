// Package main provides scimd, a reference SCIM 2.0 server binary that
// wires the engine (package scim) to an in-memory resource store, a
// structured logger, Prometheus metrics, and localized error details.
package main

import (
	"fmt"
	"net/http"
	"os"

	charmlog "charm.land/log/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	scim "github.com/nielsvanzon/SCIM-SDK"
	"github.com/nielsvanzon/SCIM-SDK/errors"
	"github.com/nielsvanzon/SCIM-SDK/examples/memstore"
	"github.com/nielsvanzon/SCIM-SDK/localize"
	"github.com/nielsvanzon/SCIM-SDK/metrics"
	"github.com/nielsvanzon/SCIM-SDK/optional"
	"github.com/nielsvanzon/SCIM-SDK/schema"
)

func main() {
	cfg := newConfig()

	rootCmd := &cobra.Command{
		Use:           "scimd",
		Short:         "Serve a SCIM 2.0 Users/Groups endpoint",
		Long:          `scimd hosts the SCIM 2.0 protocol engine behind an in-memory resource store, suitable for demos, conformance testing, and as a template for wiring a real backing store.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(cfg)
		},
	}

	cfg.RegisterFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	if bundle, err := localize.NewBundle(); err != nil {
		logger.Warn("localization disabled, falling back to untranslated error details", "error", err)
	} else {
		errors.ActiveLocalizer = localize.New(bundle, cfg.Locale)
	}

	mtr := metrics.New("scim", "server")
	registry := prometheus.NewRegistry()
	if err := mtr.Register(registry); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	server := scim.Server{
		Config:        serviceProviderConfig(cfg),
		Prefix:        cfg.Prefix,
		BaseURL:       cfg.BaseURL,
		Logger:        logger,
		Metrics:       mtr,
		ResourceTypes: resourceTypes(),
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Prefix+"/", server)
	if cfg.MetricsAddr != "" {
		go func() {
			metricsMux := http.NewServeMux()
			metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, metricsMux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	logger.Info("serving SCIM", "addr", cfg.Addr, "prefix", cfg.Prefix)
	return http.ListenAndServe(cfg.Addr, mux)
}

func newLogger(cfg *config) (*charmlog.Logger, error) {
	logger := charmlog.New(os.Stderr)

	level, err := charmlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.LogLevel, err)
	}
	logger.SetLevel(level)

	switch cfg.LogFormat {
	case "json":
		logger.SetFormatter(charmlog.JSONFormatter)
	case "text", "":
		logger.SetFormatter(charmlog.TextFormatter)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}

	return logger, nil
}

func serviceProviderConfig(cfg *config) scim.ServiceProviderConfig {
	return scim.ServiceProviderConfig{
		DocumentationURI: optional.NewString("https://datatracker.ietf.org/doc/html/rfc7644"),
		Patch:            scim.FeatureFlag{Supported: true},
		Bulk:             scim.FeatureFlag{Supported: true},
		Filter:           scim.FeatureFlag{Supported: true},
		ChangePassword:   scim.FeatureFlag{Supported: true},
		Sort:             scim.FeatureFlag{Supported: true},
		ETag:             scim.FeatureFlag{Supported: true},
		FilterMaxResults:   200,
		BulkMaxOperations:  cfg.BulkMaxOps,
		BulkMaxPayloadSize: cfg.BulkMaxBytes,
		AuthenticationSchemes: []scim.AuthenticationScheme{
			{
				Type:        "oauthbearertoken",
				Name:        "OAuth Bearer Token",
				Description: "Authentication scheme using the OAuth Bearer Token standard",
				SpecURI:     optional.NewString("https://www.rfc-editor.org/info/rfc6750"),
				Primary:     true,
			},
		},
	}
}

func resourceTypes() []scim.ResourceType {
	userStore := memstore.New()
	groupStore := memstore.New()

	return []scim.ResourceType{
		{
			ID:          optional.NewString("User"),
			Name:        "User",
			Endpoint:    "/Users",
			Description: optional.NewString("User Account"),
			Schema:      schema.UserBootstrapSchema(),
			SchemaExtensions: []scim.SchemaExtension{
				{Schema: schema.EnterpriseUserBootstrapSchema(), Required: false},
			},
			Handler: userStore,
		},
		{
			ID:          optional.NewString("Group"),
			Name:        "Group",
			Endpoint:    "/Groups",
			Description: optional.NewString("Group"),
			Schema:      schema.GroupBootstrapSchema(),
			Handler:     groupStore,
		},
	}
}
