package containers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupRedisContainer starts a plain Redis container and returns it with a
// redis:// URL. The caller terminates the container.
func SetupRedisContainer(ctx context.Context) (testcontainers.Container, string, error) {
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForLog("Ready to accept connections"),
				wait.ForListeningPort("6379/tcp"),
			).WithDeadline(45 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to start redis container: %w", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		if terminateErr := redisContainer.Terminate(ctx); terminateErr != nil {
			log.Printf("Failed to terminate redis container after endpoint lookup failed: %v", terminateErr)
		}
		return nil, "", fmt.Errorf("failed to get redis endpoint: %w", err)
	}

	redisURL := "redis://" + endpoint + "/0"
	log.Printf("Redis container ready: %s", redisURL)
	return redisContainer, redisURL, nil
}
