package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/tillware/posgate/pkg/client"
	"github.com/tillware/posgate/pkg/config"
	"github.com/tillware/posgate/pkg/observability"
	"github.com/tillware/posgate/pkg/rbac"
	"github.com/tillware/posgate/pkg/session"
)

// app wires the configuration, backend client, session store, and permission
// resolver together for one command invocation.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	backend  *client.Client
	store    *session.Store
	resolver *rbac.Resolver
}

// newApp builds the command runtime and restores any persisted session. An
// unreachable authority during restore is tolerated; commands then run in
// degraded mode against the local policy table.
func newApp(ctx context.Context, verbose bool) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	obs := observability.NewLogger(cfg.Observability.LogLevel, os.Stderr)
	if !verbose {
		obs = observability.NopLogger()
	}
	metrics := observability.NewMetrics(nil)

	policy := rbac.DefaultPolicy()
	if cfg.Session.PolicyFile != "" {
		policy, err = rbac.LoadPolicyFile(cfg.Session.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load policy file: %w", err)
		}
		log.WithField("path", cfg.Session.PolicyFile).Debug("loaded policy overrides")
	}

	credPath := cfg.Session.CredentialsFile
	if credPath == "" {
		credPath, err = session.DefaultCredentialPath()
		if err != nil {
			return nil, err
		}
	}

	backend := client.New(client.Config{
		UserServiceURL: cfg.Backends.UserServiceURL,
		POSServiceURL:  cfg.Backends.POSServiceURL,
		Timeout:        cfg.Backends.RequestTimeout,
	}, nil, obs, metrics)

	store := session.NewStore(session.StoreConfig{
		Authority:   backend,
		Credentials: session.NewCredentialFile(credPath),
		CacheSize:   cfg.Session.CacheSize,
		FallbackTTL: cfg.Session.FallbackTTL,
		Logger:      obs,
		Metrics:     metrics,
	})
	backend.SetTokenProvider(store)
	backend.SetOnUnauthorized(store.HandleUnauthorized)

	resolver := rbac.NewResolver(store, backend, policy, obs, metrics)

	if err := store.Restore(ctx); err != nil {
		log.WithError(err).Warn("session restore failed")
	}

	return &app{
		cfg:      cfg,
		log:      log,
		backend:  backend,
		store:    store,
		resolver: resolver,
	}, nil
}

// requireSession fails fast when a command needs an authenticated session
func (a *app) requireSession() error {
	if a.store.State() != session.StateAuthenticated {
		return fmt.Errorf("not logged in, run 'posgate login' first")
	}
	return nil
}
