package provisioning

import (
	"context"
	"fmt"
	"sync"
)

// Fake records provisioning calls in memory. Tests swap it in for the HTTP
// client and can force deterministic failures.
type Fake struct {
	mu       sync.Mutex
	nextID   int
	apps     []string
	machines map[string]Machine

	CreateAppErr     error
	CreateMachineErr error
	// MachineState is reported by GetMachine for machines created afterwards.
	// Defaults to "started".
	MachineState string
}

func NewFake() *Fake {
	return &Fake{machines: make(map[string]Machine)}
}

func (f *Fake) CreateApp(_ context.Context, appID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateAppErr != nil {
		return f.CreateAppErr
	}
	f.apps = append(f.apps, appID)
	return nil
}

func (f *Fake) CreateMachine(_ context.Context, appID, cpuKind, gpuKind, imageRef string) (Machine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateMachineErr != nil {
		return Machine{}, f.CreateMachineErr
	}

	f.nextID++
	state := f.MachineState
	if state == "" {
		state = "started"
	}
	machine := Machine{
		ID:    fmt.Sprintf("machine-%d", f.nextID),
		Name:  fmt.Sprintf("%s/%s", appID, imageRef),
		State: state,
	}
	f.machines[machineKey(appID, machine.ID)] = machine
	return machine, nil
}

func (f *Fake) GetMachine(_ context.Context, appID, machineID string) (Machine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	machine, ok := f.machines[machineKey(appID, machineID)]
	if !ok {
		return Machine{}, fmt.Errorf("%w: machine %s not found", ErrProvisioning, machineID)
	}
	return machine, nil
}

// SetMachineState rewrites the state a later GetMachine reports.
func (f *Fake) SetMachineState(appID, machineID, state string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	machine, ok := f.machines[machineKey(appID, machineID)]
	if !ok {
		return
	}
	machine.State = state
	f.machines[machineKey(appID, machineID)] = machine
}

func (f *Fake) Apps() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.apps...)
}

func (f *Fake) MachineCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.machines)
}

func machineKey(appID, machineID string) string {
	return appID + "/" + machineID
}
