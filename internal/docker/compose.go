package docker

import (
	"context"
)

// ServiceInfo is one row of `docker compose ps --format json`.
type ServiceInfo struct {
	Name    string `json:"Name"`
	Service string `json:"Service"`
	State   string `json:"State"`
	Health  string `json:"Health"`
	Status  string `json:"Status"`
}

// Running reports whether the container is in the running state.
func (s ServiceInfo) Running() bool {
	return s.State == "running"
}

// ComposeConfig validates a compose file with `docker compose config --quiet`.
func (c *Client) ComposeConfig(ctx context.Context, file string) error {
	_, err := c.Run(ctx, "compose", "-f", file, "config", "--quiet")
	return err
}

// ComposePS lists the services of a compose project. An empty project
// yields no services and no error.
func (c *Client) ComposePS(ctx context.Context, file string) ([]ServiceInfo, error) {
	var services []ServiceInfo
	if err := RunJSONLines(ctx, c, &services, false, "compose", "-f", file, "ps", "--format", "json"); err != nil {
		return nil, err
	}
	return services, nil
}
