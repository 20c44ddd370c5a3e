package labcheck

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/xdg/labguard/internal/docker"
	"github.com/xdg/labguard/internal/executor"
)

type fakeExec struct {
	results map[string]executor.Result

	mu    sync.Mutex
	calls []string
}

func (f *fakeExec) Run(_ context.Context, cmd executor.Command) (executor.Result, error) {
	key := strings.Join(cmd.Args, " ")
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	if res, ok := f.results[key]; ok {
		return res, nil
	}
	return executor.Result{ExitCode: 1, Stderr: "unexpected: " + key}, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func statuses(r *Report) map[string]Status {
	m := make(map[string]Status)
	for _, res := range r.Results {
		m[res.Name] = res.Status
	}
	return m
}

func TestChecker_AllPass(t *testing.T) {
	dir := t.TempDir()
	compose := writeFile(t, dir, "docker-compose.yml", "services: {}\n")
	env := writeFile(t, dir, ".env", "JUPYTER_TOKEN=abc123\nPOSTGRES_PASSWORD='s3cret'\n")

	fake := &fakeExec{results: map[string]executor.Result{
		"docker --version":                                 {Stdout: "Docker version 27.0.3\n"},
		"docker info --format {{.ServerVersion}}":          {Stdout: "27.0.3\n"},
		"docker compose -f " + compose + " config --quiet": {},
		"docker compose -f " + compose + " ps --format json": {
			Stdout: `{"Service":"jupyter","State":"running"}` + "\n",
		},
	}}

	r := New(docker.NewClient(fake), Options{ComposeFile: compose, EnvFile: env}).Run(context.Background())
	if r.Failed() {
		t.Fatalf("unexpected failure: %+v", r.Results)
	}
	if r.Count(StatusPass) != 5 {
		t.Errorf("expected 5 passes, got %+v", r.Results)
	}
	for _, res := range r.Results {
		if strings.Contains(res.Message, "abc123") || strings.Contains(res.Message, "s3cret") {
			t.Errorf("secret leaked in %s: %s", res.Name, res.Message)
		}
	}
}

func TestChecker_DockerMissing(t *testing.T) {
	dir := t.TempDir()
	compose := writeFile(t, dir, "docker-compose.yml", "services: {}\n")

	fake := &fakeExec{results: map[string]executor.Result{
		"docker --version": {ExitCode: 127, Stderr: "not found"},
	}}
	r := New(docker.NewClient(fake), Options{ComposeFile: compose, EnvFile: filepath.Join(dir, ".env")}).Run(context.Background())

	got := statuses(r)
	want := map[string]Status{
		"Docker CLI":       StatusFail,
		"Docker daemon":    StatusSkip,
		"Compose file":     StatusSkip,
		"Environment file": StatusFail,
		"Compose services": StatusSkip,
	}
	for name, s := range want {
		if got[name] != s {
			t.Errorf("%s = %s, want %s", name, got[name], s)
		}
	}
	if len(fake.calls) != 1 {
		t.Errorf("dependent checks should not run docker, calls = %v", fake.calls)
	}
}

func TestChecker_MissingEnvKeys(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, ".env", "# lab secrets\nJUPYTER_TOKEN=\nTZ=UTC\n")
	fake := &fakeExec{results: map[string]executor.Result{}}

	r := New(docker.NewClient(fake), Options{EnvFile: env}).Run(context.Background())
	for _, res := range r.Results {
		if res.Name != "Environment file" {
			continue
		}
		if res.Status != StatusFail || res.Message != "missing or empty: JUPYTER_TOKEN, POSTGRES_PASSWORD" {
			t.Errorf("unexpected env result %+v", res)
		}
	}
}

func TestChecker_ServiceDown(t *testing.T) {
	dir := t.TempDir()
	compose := writeFile(t, dir, "c.yml", "services: {}\n")
	fake := &fakeExec{results: map[string]executor.Result{
		"docker --version":                                 {Stdout: "Docker version 27\n"},
		"docker info --format {{.ServerVersion}}":          {Stdout: "27\n"},
		"docker compose -f " + compose + " config --quiet": {},
		"docker compose -f " + compose + " ps --format json": {
			Stdout: `{"Service":"jupyter","State":"running"}` + "\n" + `{"Service":"postgres","State":"exited"}` + "\n",
		},
	}}

	r := New(docker.NewClient(fake), Options{ComposeFile: compose}).Run(context.Background())
	last := r.Results[len(r.Results)-1]
	if last.Status != StatusFail || !strings.Contains(last.Message, "postgres (exited)") {
		t.Errorf("unexpected services result %+v", last)
	}
	if statuses(r)["Environment file"] != StatusSkip {
		t.Error("env check should be skipped without a configured file")
	}
}

func TestReadEnvFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), ".env", strings.Join([]string{
		"# comment",
		"",
		"A=1",
		"export B=two",
		`C="quoted value"`,
		"D='single'",
		"E=plain # trailing comment",
		"F=has=equals",
	}, "\n"))

	env, err := ReadEnvFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"A": "1", "B": "two", "C": "quoted value", "D": "single", "E": "plain", "F": "has=equals"}
	for k, v := range want {
		if env[k] != v {
			t.Errorf("%s = %q, want %q", k, env[k], v)
		}
	}

	bad := writeFile(t, t.TempDir(), ".env", "NOEQUALS\n")
	if _, err := ReadEnvFile(bad); err == nil {
		t.Error("expected error for line without '='")
	}
}

func TestChecker_DockerTooOld(t *testing.T) {
	fake := &fakeExec{results: map[string]executor.Result{
		"docker --version":                        {Stdout: "Docker version 19.3.1, build 39a8f0b\n"},
		"docker info --format {{.ServerVersion}}": {Stdout: "19.3.1\n"},
	}}

	r := New(docker.NewClient(fake), Options{MinDockerVersion: DefaultMinDockerVersion}).Run(context.Background())

	got := statuses(r)
	if got["Docker CLI"] != StatusFail {
		t.Errorf("Docker CLI = %s, want fail", got["Docker CLI"])
	}
	if got["Docker daemon"] != StatusPass {
		t.Errorf("Docker daemon = %s, want pass", got["Docker daemon"])
	}
	if !strings.Contains(r.Results[0].Message, "19.3.1") {
		t.Errorf("message %q should name the installed version", r.Results[0].Message)
	}
}

func TestOlderThan(t *testing.T) {
	tests := []struct {
		line, minimum string
		wantOld       bool
	}{
		{"Docker version 27.0.3, build 7d4bcd8", "20.10.0", false},
		{"Docker version 20.10.0, build abc", "20.10.0", false},
		{"Docker version 19.3.1, build abc", "20.10.0", true},
		{"Docker version 27.0.3", "", false},
		{"podman version unknown", "20.10.0", false},
		{"Docker version 27.0.3", "not-a-version", false},
	}

	for _, tt := range tests {
		if _, old := olderThan(tt.line, tt.minimum); old != tt.wantOld {
			t.Errorf("olderThan(%q, %q) = %v, want %v", tt.line, tt.minimum, old, tt.wantOld)
		}
	}
}
