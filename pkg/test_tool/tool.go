package testtool

import (
	"context"
	"errors"
	"strings"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
)

// SetupContainer 通用函式來啟動測試容器，回傳第一個 exposed port 的對外位址
func SetupContainer(ctx context.Context, req testcontainers.ContainerRequest) (testcontainers.Container, string, string, error) {
	if len(req.ExposedPorts) == 0 {
		return nil, "", "", errors.New("container request has no exposed port")
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", "", err
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, "", "", err
	}

	exposed := req.ExposedPorts[0]
	if !strings.Contains(exposed, "/") {
		exposed += "/tcp"
	}
	port, err := container.MappedPort(ctx, nat.Port(exposed))
	if err != nil {
		container.Terminate(ctx)
		return nil, "", "", err
	}

	return container, host, port.Port(), nil
}
