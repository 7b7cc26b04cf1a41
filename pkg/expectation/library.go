package expectation

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/leapdq/pkg/core"
)

// CheckFunc runs an expectation against a batch with decoded parameters.
// params is the value returned by the definition's NewParams, populated.
type CheckFunc func(b *Batch, params any) (core.ValidationOutcome, error)

// Validator is implemented by parameter structs that check themselves after
// decoding. Validate may also precompute state (compiled patterns).
type Validator interface {
	Validate() error
}

// Definition describes one registered expectation.
type Definition struct {
	Name        string     // Name rule-sets declare, e.g. "ExpectColumnNotNull"
	Type        string     // Reported rule type, e.g. "expect_column_values_to_not_be_null"
	Description string     // Human-readable description
	ParamKeys   []string   // Accepted parameter keys, for documentation
	NewParams   func() any // Returns a pointer to a zero parameter struct
	Check       CheckFunc
}

// Library is a registry of expectations keyed by exact name.
type Library struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{defs: make(map[string]Definition)}
}

var (
	defaultOnce    sync.Once
	defaultLibrary *Library
)

// Default returns the library holding the built-in catalog.
func Default() *Library {
	defaultOnce.Do(func() {
		defaultLibrary = NewLibrary()
		RegisterBuiltins(defaultLibrary)
	})
	return defaultLibrary
}

// Register adds a definition, replacing any existing one with the same name.
func (l *Library) Register(def Definition) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.defs[def.Name] = def
}

// Lookup returns the definition registered under name. Matching is exact.
func (l *Library) Lookup(name string) (Definition, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	def, ok := l.defs[name]
	return def, ok
}

// Names returns all registered names, sorted.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.defs))
	for name := range l.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns all registered definitions sorted by name.
func (l *Library) Definitions() []Definition {
	names := l.Names()
	l.mu.RLock()
	defer l.mu.RUnlock()
	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		defs = append(defs, l.defs[name])
	}
	return defs
}

// Bound is a definition with decoded, validated parameters, ready to run.
type Bound struct {
	Definition Definition
	Params     any
}

// Run executes the expectation against a batch.
func (b *Bound) Run(batch *Batch) (core.ValidationOutcome, error) {
	return b.Definition.Check(batch, b.Params)
}

// Bind resolves name and decodes raw parameters into the definition's
// parameter struct. ok is false when name is not registered.
func (l *Library) Bind(name string, raw map[string]any) (bound *Bound, ok bool, err error) {
	def, ok := l.Lookup(name)
	if !ok {
		return nil, false, nil
	}
	params, err := decodeParams(def, raw)
	if err != nil {
		return nil, true, &ParamError{Rule: name, Err: err}
	}
	return &Bound{Definition: def, Params: params}, true, nil
}

func decodeParams(def Definition, raw map[string]any) (any, error) {
	if def.NewParams == nil {
		return nil, nil
	}
	params := def.NewParams()

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           params,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}

	if v, ok := params.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return params, nil
}
