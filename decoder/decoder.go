// Package decoder turns flux samples into bitcells.
//
// A Strategy consumes the whole sample sequence at a target bitcell period
// and writes the recovered bitcells into a bitcell.Buffer, starting at bit 0.
// Strategies are selected by name through a Registry; names of the form
// "nco[<integral>,<error>]" build an NCO loop with those divisors.
package decoder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sergev/flux2hfe/bitcell"
)

// ErrUnknownAlgorithm is returned when a strategy name cannot be resolved.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// NCOPrefix starts the parametrized NCO strategy names.
const NCOPrefix = "nco["

// Strategy recovers bitcells from flux samples.
type Strategy interface {
	// Name returns the registry name of the strategy.
	Name() string

	// Decode writes bitcells for all samples into buf and returns
	// the number of bitcells produced. period is the target bitcell
	// length in sample ticks and is never zero.
	Decode(period uint16, samples []uint16, buf *bitcell.Buffer) uint64
}

// Registry maps strategy names to strategies.
type Registry struct {
	strategies []Strategy
}

// NewRegistry creates a registry holding the given strategies in order.
func NewRegistry(strategies ...Strategy) *Registry {
	return &Registry{strategies: strategies}
}

// Register appends a strategy to the registry.
func (r *Registry) Register(s Strategy) {
	r.strategies = append(r.strategies, s)
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Strategies returns the registered strategies in registration order.
func (r *Registry) Strategies() []Strategy {
	return append([]Strategy(nil), r.strategies...)
}

// Resolve returns the strategy for name.
// Names starting with "nco[" are parsed into an NCO strategy, anything else
// must match a registered name exactly.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strings.HasPrefix(name, NCOPrefix) {
		nco, err := ParseNCO(name)
		if err != nil {
			return nil, err
		}
		return nco, nil
	}

	for _, s := range r.strategies {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
}

// Default returns a registry with all built-in strategies.
func Default() *Registry {
	r := NewRegistry(Fixed{})
	for _, p := range pllVariants {
		r.Register(p)
	}
	for _, n := range ncoVariants {
		r.Register(n)
	}
	return r
}
