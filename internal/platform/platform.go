package platform

import (
	"sort"
	"strconv"
	"strings"
)

// Platform represents one named target configuration. Conditional
// compilation predicates are evaluated against its symbol table, which
// holds the macros defined for that configuration.
//
// Platform identity for aggregation purposes is the name, not the
// object: two Platform values with the same name are the same platform.
type Platform struct {
	name    string
	symbols map[string]int64
}

// New creates a platform with the given name and an empty symbol table.
func New(name string) *Platform {
	return &Platform{
		name:    name,
		symbols: make(map[string]int64),
	}
}

// Name returns the platform's unique name.
func (p *Platform) Name() string {
	return p.name
}

// Define records a macro with an explicit integer value.
func (p *Platform) Define(macro string, value int64) {
	p.symbols[macro] = value
}

// DefineSpec records a macro from a "NAME" or "NAME=VALUE" spec, the
// form used in configuration files and on compiler command lines.
// A bare name defines the macro as 1. A value that does not parse as an
// integer defines the macro as 0; the macro still counts as defined.
func (p *Platform) DefineSpec(spec string) {
	name, value, found := strings.Cut(spec, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if !found {
		p.symbols[name] = 1
		return
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 0, 64)
	if err != nil {
		parsed = 0
	}
	p.symbols[name] = parsed
}

// Undef removes a macro from the symbol table.
func (p *Platform) Undef(macro string) {
	delete(p.symbols, macro)
}

// Defined reports whether a macro is defined for this platform.
func (p *Platform) Defined(macro string) bool {
	_, ok := p.symbols[macro]
	return ok
}

// Value returns the integer value of a defined macro. Undefined macros
// evaluate to 0, matching preprocessor semantics.
func (p *Platform) Value(macro string) int64 {
	return p.symbols[macro]
}

// Symbols returns the defined macro names in sorted order.
func (p *Platform) Symbols() []string {
	names := make([]string, 0, len(p.symbols))
	for name := range p.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the platform. Association passes
// mutate the symbol table when they reach #define and #undef directives,
// so each pass over a file works on its own clone.
func (p *Platform) Clone() *Platform {
	clone := New(p.name)
	for name, value := range p.symbols {
		clone.symbols[name] = value
	}
	return clone
}
