package repository

import (
	"sync"

	"github.com/Thejuampi/memris-sub005/pkg/errs"
)

// Generator produces one id value for a CUSTOM id strategy.
type Generator func() (any, error)

// GeneratorRegistry holds named id Generators, shared by every Core a
// Factory constructs so a generator registered once is visible to
// every record type that names it.
type GeneratorRegistry struct {
	mu     sync.RWMutex
	byName map[string]Generator
}

// NewGeneratorRegistry creates an empty registry.
func NewGeneratorRegistry() *GeneratorRegistry {
	return &GeneratorRegistry{byName: make(map[string]Generator)}
}

// Register adds or replaces the generator for name.
func (r *GeneratorRegistry) Register(name string, g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = g
}

// Generate invokes the named generator, or errs.GeneratorNotFound if
// none was registered.
func (r *GeneratorRegistry) Generate(name string) (any, error) {
	r.mu.RLock()
	g, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errs.NewGeneratorNotFound(name)
	}
	return g()
}
