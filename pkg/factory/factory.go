// Package factory implements Factory: the top-level entry point that
// owns every Arena an application creates, assigning each a
// strictly-increasing id and closing them all together.
package factory

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Thejuampi/memris-sub005/pkg/arena"
	"github.com/Thejuampi/memris-sub005/pkg/config"
	"github.com/Thejuampi/memris-sub005/pkg/logging"
	"github.com/Thejuampi/memris-sub005/pkg/repository"
)

// Factory creates and owns Arenas, and holds the id-generator registry
// every Arena's repositories share.
type Factory struct {
	cfg *config.Config
	log logging.Logger

	nextArenaID atomic.Uint64
	generators  *repository.GeneratorRegistry

	mu     sync.Mutex
	arenas []*arena.Arena
	closed bool
}

// New creates a Factory with the given configuration and logger. A nil
// cfg uses config.Default(); a nil log discards every log line.
func New(cfg *config.Config, log logging.Logger) *Factory {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logging.NoOp()
	}
	return &Factory{cfg: cfg, log: log, generators: repository.NewGeneratorRegistry()}
}

// NewFromTOMLFile builds a Factory whose configuration is loaded from
// path.
func NewFromTOMLFile(path string, log logging.Logger) (*Factory, error) {
	cfg, err := config.LoadTOMLFile(path)
	if err != nil {
		return nil, err
	}
	return New(cfg, log), nil
}

// RegisterIdGenerator registers a named generator every CUSTOM-strategy
// record type across every Arena this Factory creates can reference.
func (f *Factory) RegisterIdGenerator(name string, generator repository.Generator) {
	f.generators.Register(name, generator)
}

// Generators exposes the shared generator registry, for callers
// constructing a repository.Core directly instead of through a
// descriptor-driven path.
func (f *Factory) Generators() *repository.GeneratorRegistry {
	return f.generators
}

// CreateArena builds a new, independent Arena owned by this Factory.
func (f *Factory) CreateArena() (*arena.Arena, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, fmt.Errorf("factory: closed")
	}
	id := f.nextArenaID.Add(1)
	a := arena.New(fmt.Sprintf("arena-%d", id), f.cfg, f.log)
	f.arenas = append(f.arenas, a)
	return a, nil
}

// Close closes every Arena this Factory has created. Idempotent.
func (f *Factory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for _, a := range f.arenas {
		a.Close()
	}
}
