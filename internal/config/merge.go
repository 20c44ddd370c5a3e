package config

// ApplyDefaults fills every unset field of cfg from DefaultGlobalConfig.
// Maps and lists are taken whole: a configured roles table replaces the
// built-in one rather than extending it.
func ApplyDefaults(cfg *GlobalConfig) {
	d := DefaultGlobalConfig()

	cfg.Paths.Root = firstNonEmpty(cfg.Paths.Root, d.Paths.Root)
	if len(cfg.Roles) == 0 {
		cfg.Roles = d.Roles
	}

	if cfg.Runner.DefaultTimeout == "" && cfg.Runner.DefaultTimeoutSeconds == 0 {
		cfg.Runner.DefaultTimeout = d.Runner.DefaultTimeout
	}

	cfg.Audit.File = firstNonEmpty(cfg.Audit.File, d.Audit.File)
	cfg.Audit.Driver = firstNonEmpty(cfg.Audit.Driver, d.Audit.Driver)
	cfg.Audit.SQLitePath = firstNonEmpty(cfg.Audit.SQLitePath, d.Audit.SQLitePath)

	cfg.Check.ComposeFile = firstNonEmpty(cfg.Check.ComposeFile, d.Check.ComposeFile)
	cfg.Check.EnvFile = firstNonEmpty(cfg.Check.EnvFile, d.Check.EnvFile)
	cfg.Check.MinDockerVersion = firstNonEmpty(cfg.Check.MinDockerVersion, d.Check.MinDockerVersion)
	if cfg.Check.RequiredEnv == nil {
		cfg.Check.RequiredEnv = d.Check.RequiredEnv
	}

	cfg.Log.File = firstNonEmpty(cfg.Log.File, d.Log.File)
	cfg.Log.Level = firstNonEmpty(cfg.Log.Level, d.Log.Level)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
