// Package provisioning talks to the remote compute API that turns job
// requests into running machines. The rest of the system only sees the
// Provisioner interface; the HTTP client and the test fake both implement it.
package provisioning

import (
	"context"
	"errors"
)

// ErrProvisioning wraps every failure of the remote API, including timeouts.
// Callers only branch on this sentinel; detail stays in the wrapped message.
var ErrProvisioning = errors.New("provisioning request failed")

type Machine struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

type Provisioner interface {
	// CreateApp creates the per-user application namespace. Creating an app
	// that already exists is the caller's concern; the API treats it as an
	// error.
	CreateApp(ctx context.Context, appID string) error
	// CreateMachine allocates a machine running imageRef (image_url:version)
	// inside the given app.
	CreateMachine(ctx context.Context, appID, cpuKind, gpuKind, imageRef string) (Machine, error)
	GetMachine(ctx context.Context, appID, machineID string) (Machine, error)
}
