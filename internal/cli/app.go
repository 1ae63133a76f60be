package cli

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satchel-app/satchel/internal/config"
	"github.com/satchel-app/satchel/internal/logging"
	"github.com/satchel-app/satchel/internal/remote"
	"github.com/satchel-app/satchel/internal/session"
	"github.com/satchel-app/satchel/internal/store"
	"github.com/satchel-app/satchel/internal/syncer"
)

// App bundles the wired-up layers for one CLI invocation.
type App struct {
	Config  config.Config
	Log     *zap.Logger
	Store   *store.Store
	Syncer  *syncer.Syncer
	Session *session.Manager
	Probe   syncer.Probe
}

// openApp loads configuration, opens the store, and wires the
// reconciliation and session layers. Every command calls this once and
// closes the result when done. The built logger is attached to the
// command context so layers below read it with logging.FromContext.
func openApp(cmd *cobra.Command, opts *RootOptions) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading configuration", err)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.Log.Environment,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "building logger", err)
	}
	cmd.SetContext(logging.WithContext(cmd.Context(), logger))
	ctx := cmd.Context()

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "opening local store", err)
	}

	client := remote.NewClientWithTimeout(cfg.API.BaseURL,
		time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	probe, err := syncer.NewDialProbe(cfg.API.BaseURL)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "parsing API base URL", err)
	}

	sy := syncer.New(st, client, probe, logger, cfg.Session.SigningKey)
	mgr := session.NewManager(sy, logger)
	if err := mgr.Bootstrap(ctx); err != nil {
		st.Close()
		return nil, err
	}

	return &App{
		Config:  cfg,
		Log:     logger,
		Store:   st,
		Syncer:  sy,
		Session: mgr,
		Probe:   probe,
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() {
	a.Session.Close()
	a.Store.Close()
	_ = a.Log.Sync()
}

// requireIdentity returns the signed-in identity or a sign-in prompt.
func (a *App) requireIdentity() (syncer.Identity, error) {
	state := a.Session.State()
	if !state.SignedIn {
		return syncer.Identity{}, WrapExitError(ExitFailure, "not signed in (run: satchel login)", session.ErrNotSignedIn)
	}
	return state.Identity, nil
}

// requireAdmin returns the identity when the signed-in user is an
// administrator.
func (a *App) requireAdmin() (syncer.Identity, error) {
	ident, err := a.requireIdentity()
	if err != nil {
		return syncer.Identity{}, err
	}
	if ident.Role != store.RoleAdministrator {
		return syncer.Identity{}, WrapExitError(ExitFailure, "administrator role required", nil)
	}
	return ident, nil
}
