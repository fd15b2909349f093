package health

import (
	"context"

	"docuscore-backend/internal/connectivity"
)

// Status is the health payload.
type Status struct {
	OK      bool   `json:"ok"`
	Online  bool   `json:"online"`
	Storage string `json:"storage"`
}

// ConnectivityStatus reports the tier the next analysis would use.
type ConnectivityStatus struct {
	Online bool   `json:"online"`
	Mode   string `json:"mode"`
}

// Service encapsulates health-related checks.
type Service struct {
	provider connectivity.Provider
	mode     string
	storage  string
}

// NewService constructs a new health service.
func NewService(provider connectivity.Provider, mode, storage string) *Service {
	return &Service{provider: provider, mode: mode, storage: storage}
}

// Status returns the health payload. Offline is healthy; it only selects the local tier.
func (s *Service) Status(ctx context.Context) Status {
	return Status{OK: true, Online: s.online(ctx), Storage: s.storage}
}

// Connectivity returns the current connectivity reading.
func (s *Service) Connectivity(ctx context.Context) ConnectivityStatus {
	return ConnectivityStatus{Online: s.online(ctx), Mode: s.mode}
}

func (s *Service) online(ctx context.Context) bool {
	if s == nil || s.provider == nil {
		return false
	}
	return s.provider.Online(ctx)
}
