package config

import (
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &GlobalConfig{
		Roles:  map[string][]string{"viewer": {"read"}},
		Check:  CheckConfig{RequiredEnv: []string{}},
		Log:    LogConfig{Level: "error"},
		Runner: RunnerConfig{Strict: true},
	}
	ApplyDefaults(cfg)

	if len(cfg.Roles) != 1 {
		t.Errorf("configured roles should replace defaults, got %v", cfg.Roles)
	}
	if cfg.Check.RequiredEnv == nil || len(cfg.Check.RequiredEnv) != 0 {
		t.Errorf("explicit empty required_env should be kept, got %v", cfg.Check.RequiredEnv)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Runner.DefaultTimeout != "30s" || !cfg.Runner.Strict {
		t.Errorf("runner = %+v", cfg.Runner)
	}
	if cfg.Check.MinDockerVersion != "20.10.0" {
		t.Errorf("Check.MinDockerVersion = %q", cfg.Check.MinDockerVersion)
	}
	if cfg.Audit.Driver != AuditDriverFile || cfg.Paths.Root != "." {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLayout_ExplicitCategories(t *testing.T) {
	cfg := &GlobalConfig{Paths: PathsConfig{Root: "/ignored", Categories: map[string]string{"raw": "/data/in"}}}
	layout := cfg.Layout()
	if len(layout) != 1 || layout["raw"] != "/data/in" {
		t.Errorf("Layout() = %v", layout)
	}
	layout["raw"] = "changed"
	if cfg.Paths.Categories["raw"] != "/data/in" {
		t.Error("Layout() should return a copy")
	}
}

func TestRoleTable(t *testing.T) {
	if len((&GlobalConfig{}).RoleTable()) != 4 {
		t.Error("empty roles should fall back to the built-in table")
	}
	cfg := &GlobalConfig{Roles: map[string][]string{"ops": {"process"}}}
	if rt := cfg.RoleTable(); len(rt) != 1 || rt["ops"][0] != "process" {
		t.Errorf("RoleTable() = %v", rt)
	}
}
