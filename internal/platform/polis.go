package platform

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"spikewalk/internal/logging"
	"spikewalk/internal/scape"
	"spikewalk/internal/storage"
)

type Config struct {
	Store  storage.Store
	Scapes []scape.Scape
	Logger *slog.Logger
}

type StopReason string

const (
	StopReasonNormal   StopReason = "normal"
	StopReasonShutdown StopReason = "shutdown"
)

// Polis owns the store and the registered scapes that genomes are
// evaluated in.
type Polis struct {
	store  storage.Store
	logger *slog.Logger

	mu sync.RWMutex

	scapes  map[string]scape.Scape
	started bool

	config Config
}

func NewPolis(cfg Config) *Polis {
	return &Polis{
		store:  cfg.Store,
		logger: logging.OrDiscard(cfg.Logger),
		scapes: make(map[string]scape.Scape),
		config: cfg,
	}
}

func (p *Polis) Init(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("store is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := p.store.Init(ctx); err != nil {
		return err
	}

	scapes := make(map[string]scape.Scape, len(p.config.Scapes))
	for i, s := range p.config.Scapes {
		if s == nil {
			return fmt.Errorf("scape is nil at index %d", i)
		}
		name := s.Name()
		if name == "" {
			return fmt.Errorf("scape name is required at index %d", i)
		}
		if _, exists := scapes[name]; exists {
			return fmt.Errorf("duplicate scape: %s", name)
		}
		scapes[name] = s
	}
	p.scapes = scapes
	p.started = true
	p.logger.Debug("polis started", "scapes", len(scapes))
	return nil
}

func (p *Polis) GetScape(name string) (scape.Scape, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.scapes[name]
	return s, ok
}

func (p *Polis) RegisteredScapes() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.scapes))
	for name := range p.scapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StopWithReason unregisters every scape. EvaluateGenomes fails until Init
// is called again; the store is left open for its owner to close.
func (p *Polis) StopWithReason(reason StopReason) error {
	if reason == "" {
		reason = StopReasonNormal
	}
	if reason != StopReasonNormal && reason != StopReasonShutdown {
		return fmt.Errorf("unsupported stop reason: %s", reason)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return nil
	}
	p.started = false
	p.scapes = make(map[string]scape.Scape)
	p.logger.Debug("polis stopped", "reason", reason)
	return nil
}

func (p *Polis) Started() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.started
}
