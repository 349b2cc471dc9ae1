package provisioning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"lionfish/api/internal/config"
)

// Client is the Machines API implementation of Provisioner.
type Client struct {
	baseURL string
	token   string
	org     string
	region  string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg config.ProvisionerConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		org:     cfg.OrgSlug,
		region:  cfg.Region,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log,
	}
}

type createAppRequest struct {
	AppName string `json:"app_name"`
	OrgSlug string `json:"org_slug"`
}

type machineGuest struct {
	CPUKind  string `json:"cpu_kind"`
	GPUKind  string `json:"gpu_kind,omitempty"`
	CPUs     int    `json:"cpus"`
	MemoryMB int    `json:"memory_mb"`
}

type machinePort struct {
	Port       int      `json:"port"`
	Handlers   []string `json:"handlers"`
	ForceHTTPS bool     `json:"force_https"`
}

type machineService struct {
	Protocol           string        `json:"protocol"`
	InternalPort       int           `json:"internal_port"`
	Autostart          bool          `json:"autostart"`
	Autostop           bool          `json:"autostop"`
	MinMachinesRunning int           `json:"min_machines_running"`
	Ports              []machinePort `json:"ports"`
}

type machineConfig struct {
	Image    string           `json:"image"`
	Guest    machineGuest     `json:"guest"`
	Services []machineService `json:"services"`
}

type createMachineRequest struct {
	Region string        `json:"region"`
	Config machineConfig `json:"config"`
}

func (c *Client) CreateApp(ctx context.Context, appID string) error {
	body := createAppRequest{
		AppName: appID,
		OrgSlug: c.org,
	}
	return c.do(ctx, http.MethodPost, "/v1/apps", body, nil)
}

func (c *Client) CreateMachine(ctx context.Context, appID, cpuKind, gpuKind, imageRef string) (Machine, error) {
	body := createMachineRequest{
		Region: c.region,
		Config: machineConfig{
			Image: imageRef,
			Guest: machineGuest{
				CPUKind:  cpuKind,
				GPUKind:  gpuKind,
				CPUs:     4,
				MemoryMB: 1024 * 16,
			},
			Services: []machineService{{
				Protocol:           "tcp",
				InternalPort:       8888,
				Autostart:          true,
				Autostop:           true,
				MinMachinesRunning: 0,
				Ports: []machinePort{{
					Port:       8080,
					Handlers:   []string{"http"},
					ForceHTTPS: false,
				}},
			}},
		},
	}

	var machine Machine
	path := fmt.Sprintf("/v1/apps/%s/machines", appID)
	if err := c.do(ctx, http.MethodPost, path, body, &machine); err != nil {
		return Machine{}, err
	}
	return machine, nil
}

func (c *Client) GetMachine(ctx context.Context, appID, machineID string) (Machine, error) {
	var machine Machine
	path := fmt.Sprintf("/v1/apps/%s/machines/%s", appID, machineID)
	if err := c.do(ctx, http.MethodGet, path, nil, &machine); err != nil {
		return Machine{}, err
	}
	return machine, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrProvisioning, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrProvisioning, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrProvisioning, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Error().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Bytes("body", detail).
			Msg("machines api error")
		return fmt.Errorf("%w: %s %s: status %d", ErrProvisioning, method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrProvisioning, err)
	}
	return nil
}
