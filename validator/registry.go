package validator

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownValidator is returned when a pipeline names a validator that is
// not registered.
var ErrUnknownValidator = errors.New("unknown validator")

// DefaultOrder is the order the full pipeline runs in.
var DefaultOrder = []string{"is", "if", "else", "expr", "map"}

// Registry maps validator names, as used in configuration, to validators.
type Registry map[string]Func

// DefaultRegistry returns a registry holding the five built-in validators.
func DefaultRegistry() Registry {
	return Registry{
		"is":   ValidateIs,
		"if":   ValidateIf,
		"else": ValidateElsePosition,
		"expr": ValidateExpr,
		"map":  ValidateMap,
	}
}

// Pipeline assembles the named validators in the order given. An empty
// list selects DefaultOrder.
func (r Registry) Pipeline(names []string) (Pipeline, error) {
	if len(names) == 0 {
		names = DefaultOrder
	}

	pipeline := make(Pipeline, 0, len(names))
	for _, name := range names {
		validate, ok := r[name]
		if !ok {
			return nil, fmt.Errorf("validator: %w %q (known: %v)", ErrUnknownValidator, name, r.Names())
		}
		pipeline = append(pipeline, validate)
	}
	return pipeline, nil
}

// Names returns the registered names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultPipeline is every built-in validator in DefaultOrder.
func DefaultPipeline() Pipeline {
	p, _ := DefaultRegistry().Pipeline(DefaultOrder)
	return p
}
