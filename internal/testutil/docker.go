// Package testutil provides shared test helpers for labguard tests.
package testutil

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/xdg/labguard/internal/docker"
	"github.com/xdg/labguard/internal/executor"
)

// RequireProgram skips the test unless every named program is on PATH.
func RequireProgram(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not available: %v", name, err)
		}
	}
}

// DockerClient returns a docker client backed by a real runner.
func DockerClient() *docker.Client {
	return docker.NewClient(executor.NewRunner(executor.WithDefaultTimeout(30 * time.Second)))
}

// RequireDocker skips the test if the docker CLI or daemon is not available.
func RequireDocker(t *testing.T) {
	t.Helper()
	RequireProgram(t, "docker")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := DockerClient().CheckDaemon(ctx); err != nil {
		t.Skipf("Docker not available: %v", err)
	}
}
