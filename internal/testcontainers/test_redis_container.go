// Package testcontainers starts throwaway backing services for integration tests.
package testcontainers

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const RedisStackImage = "redis/redis-stack-server:7.2.0-v13"

type cleanup func() error

// SetupRedisStackContainer starts a Redis Stack server (RediSearch and
// RedisJSON loaded) and reports its mapped address.
func SetupRedisStackContainer(ctx context.Context, host *string, port *int) (cleanup, error) {
	req := testcontainers.ContainerRequest{
		Image:        RedisStackImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithOccurrence(1).
			WithStartupTimeout(30 * time.Second),
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start redis stack container: %w", err)
	}

	h, err := ctr.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieving host for redis stack container: %w", err)
	}

	mappedPort, err := ctr.MappedPort(ctx, "6379/tcp")
	if err != nil {
		return nil, fmt.Errorf("retrieving mapped port for redis stack container: %w", err)
	}

	*host = h
	*port = mappedPort.Int()

	return func() error {
		return ctr.Terminate(ctx)
	}, nil
}
