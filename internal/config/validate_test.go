package config

import (
	"strings"
	"testing"
)

func TestValidateGlobalConfig_Valid(t *testing.T) {
	if err := ValidateGlobalConfig(DefaultGlobalConfig()); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if err := ValidateGlobalConfig(&GlobalConfig{}); err != nil {
		t.Errorf("empty config should validate: %v", err)
	}
	cfg := &GlobalConfig{Runner: RunnerConfig{DefaultTimeoutSeconds: 10}}
	if err := ValidateGlobalConfig(cfg); err != nil {
		t.Errorf("integer timeout should validate: %v", err)
	}
}

func TestValidateGlobalConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		cfg     GlobalConfig
		wantErr string
	}{
		{
			name:    "both timeout forms",
			cfg:     GlobalConfig{Runner: RunnerConfig{DefaultTimeout: "5s", DefaultTimeoutSeconds: 5}},
			wantErr: "not both",
		},
		{
			name:    "bad duration",
			cfg:     GlobalConfig{Runner: RunnerConfig{DefaultTimeout: "soon"}},
			wantErr: "runner.default_timeout",
		},
		{
			name:    "zero duration",
			cfg:     GlobalConfig{Runner: RunnerConfig{DefaultTimeout: "0s"}},
			wantErr: "must be positive",
		},
		{
			name:    "negative seconds",
			cfg:     GlobalConfig{Runner: RunnerConfig{DefaultTimeoutSeconds: -1}},
			wantErr: "runner.default_timeout_seconds",
		},
		{
			name:    "bad pattern",
			cfg:     GlobalConfig{Runner: RunnerConfig{AllowedPattern: "[a-"}},
			wantErr: "runner.allowed_pattern",
		},
		{
			name:    "bad driver",
			cfg:     GlobalConfig{Audit: AuditConfig{Driver: "postgres"}},
			wantErr: "audit.driver",
		},
		{
			name:    "bad max age",
			cfg:     GlobalConfig{Access: AccessConfig{SessionMaxAge: "forever"}},
			wantErr: "access.session_max_age",
		},
		{
			name:    "negative max age",
			cfg:     GlobalConfig{Access: AccessConfig{SessionMaxAge: "-1h"}},
			wantErr: "non-negative",
		},
		{
			name:    "bad role",
			cfg:     GlobalConfig{Roles: map[string][]string{"data viewer": {"read"}}},
			wantErr: "roles",
		},
		{
			name:    "empty category dir",
			cfg:     GlobalConfig{Paths: PathsConfig{Categories: map[string]string{"raw": ""}}},
			wantErr: "paths.categories.raw",
		},
		{
			name:    "bad docker version",
			cfg:     GlobalConfig{Check: CheckConfig{MinDockerVersion: "latest"}},
			wantErr: "check.min_docker_version",
		},
		{
			name:    "bad log level",
			cfg:     GlobalConfig{Log: LogConfig{Level: "verbose"}},
			wantErr: "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGlobalConfig(&tt.cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
