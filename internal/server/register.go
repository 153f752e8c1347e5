package server

import (
	"fmt"
	"log/slog"

	capi "github.com/hashicorp/consul/api"

	"dailynote.app/notes-api/internal/config"
	"dailynote.app/notes-api/internal/logging"
)

// Registrar registers the HTTP service in Consul with a /healthz check.
// Registration is optional; the service runs fine without an agent.
type Registrar struct {
	serviceID string
	client    *capi.Client
	log       *slog.Logger
}

func NewRegistrar(cfg config.Config) (*Registrar, error) {
	client, err := capi.NewClient(capi.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}
	return &Registrar{
		serviceID: fmt.Sprintf("%s-%d", cfg.ServiceName, cfg.Port),
		client:    client,
		log:       logging.ForService("registrar"),
	}, nil
}

func (r *Registrar) Register(cfg config.Config) error {
	reg := &capi.AgentServiceRegistration{
		ID:      r.serviceID,
		Name:    cfg.ServiceName,
		Address: cfg.ServiceAddr,
		Port:    cfg.Port,
		Check: &capi.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/healthz", cfg.ServiceAddr, cfg.Port),
			Interval:                       "10s",
			Timeout:                        "1s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
	if err := r.client.Agent().ServiceRegister(reg); err != nil {
		return fmt.Errorf("register service: %w", err)
	}
	r.log.Info("registered in consul", "service_id", r.serviceID)
	return nil
}

func (r *Registrar) Deregister() {
	if err := r.client.Agent().ServiceDeregister(r.serviceID); err != nil {
		r.log.Warn("failed to deregister", "service_id", r.serviceID, "error", err)
		return
	}
	r.log.Info("deregistered from consul", "service_id", r.serviceID)
}
