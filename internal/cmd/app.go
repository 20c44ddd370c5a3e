package cmd

import (
	"fmt"
	"io"
	"os"
	"os/user"

	"github.com/xdg/labguard/internal/access"
	"github.com/xdg/labguard/internal/audit"
	"github.com/xdg/labguard/internal/clog"
	"github.com/xdg/labguard/internal/config"
	"github.com/xdg/labguard/internal/executor"
	"github.com/xdg/labguard/internal/safepath"
)

// app holds the components a command works with, built from the loaded
// configuration. Callers must Close it.
type app struct {
	cfg      *config.GlobalConfig
	recorder audit.Recorder
	runner   *executor.Runner
	guard    *access.Guard
	resolver *safepath.Resolver
	closers  []io.Closer
}

// loadConfig loads the file named by --config, or the global config.
func loadConfig() (*config.GlobalConfig, error) {
	if flagConfig != "" {
		return config.LoadFrom(flagConfig)
	}
	return config.LoadGlobalConfig()
}

// configureLogging points clog at the configured log file and level.
// --debug wins over the configured level.
func configureLogging(cfg *config.GlobalConfig) {
	level := clog.ParseLevel(cfg.Log.Level)
	if flagDebug {
		level = clog.LevelDebug
	}
	if err := clog.Configure(cfg.Log.File, level, false); err != nil {
		clog.Warn("could not open log file %s: %v", cfg.Log.File, err)
	}
}

// newApp loads the configuration and wires the runner, guard and resolver
// to a shared audit recorder. actor is the user recorded for EXEC events.
func newApp(actor string) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	configureLogging(cfg)

	a := &app{cfg: cfg}
	if err := a.openAudit(); err != nil {
		return nil, err
	}

	a.runner = executor.NewRunner(
		executor.WithDefaultTimeout(cfg.RunnerTimeout()),
		executor.WithStrict(cfg.Runner.Strict),
		executor.WithAudit(a.recorder, actor),
	)

	a.guard, err = access.New(cfg.RoleTable(), a.recorder, access.WithMaxAge(cfg.SessionMaxAge()))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("role table: %w", err)
	}

	a.resolver, err = safepath.New(cfg.Layout())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("path layout: %w", err)
	}
	return a, nil
}

// openAudit opens the audit trail. The flat file is always written; the
// sqlite driver records every event into the database as well.
func (a *app) openAudit() error {
	fileLog, f, err := audit.OpenFile(a.cfg.Audit.File)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, f)

	if a.cfg.Audit.Driver != config.AuditDriverSQLite {
		a.recorder = fileLog
		return nil
	}

	store, err := audit.OpenSQLite(a.cfg.Audit.SQLitePath)
	if err != nil {
		a.Close()
		return err
	}
	a.closers = append(a.closers, store)
	a.recorder = audit.Multi(fileLog, store)
	return nil
}

// Close releases the audit sinks.
func (a *app) Close() {
	if a.guard != nil && a.guard.ActiveSessions() > 0 {
		clog.Debug("%d session(s) still active at exit", a.guard.ActiveSessions())
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			clog.Warn("close audit sink: %v", err)
		}
	}
	a.closers = nil
}

// currentUser returns the login name of the invoking user.
func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}
