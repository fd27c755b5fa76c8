package scanner

import (
	"context"
	"fmt"

	"ChannelSync/internal/domain"
)

// Request carries all parameters required to execute a scan.
type Request struct {
	Channel domain.Channel
	// AfterID stops the scan at messages already seen; zero reads back to Limit.
	AfterID int64
	Limit   int
}

// Scanner captures a single strategy implementation (web preview, RSS, etc.).
type Scanner interface {
	Name() string
	// Scan returns messages newer than req.AfterID, newest first.
	Scan(ctx context.Context, req Request) ([]domain.RawMessage, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}

// Names lists registered strategies.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	return names
}
