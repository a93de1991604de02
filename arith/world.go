package arith

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// World is an immutable assignment of integer variables. It is the diagram
// that evaluation is grounded in.
type World struct {
	vars map[string]int
}

// NewWorld returns a world with the given assignment.
func NewWorld(vars map[string]int) World {
	return World{vars: maps.Clone(vars)}
}

// ParseWorld parses assignments of the form "x=1,y=2".
func ParseWorld(s string) (World, error) {
	vars := make(map[string]int)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return World{}, fmt.Errorf("world assignment %q: missing '='", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return World{}, fmt.Errorf("world assignment %q: %w", part, err)
		}
		vars[strings.TrimSpace(name)] = n
	}
	return World{vars: vars}, nil
}

// Get returns the value of name.
func (w World) Get(name string) (int, bool) {
	v, ok := w.vars[name]
	return v, ok
}

// With returns a copy of w with name set to value.
func (w World) With(name string, value int) World {
	vars := make(map[string]int, len(w.vars)+1)
	maps.Copy(vars, w.vars)
	vars[name] = value
	return World{vars: vars}
}

// Len returns the number of assigned variables.
func (w World) Len() int { return len(w.vars) }

// String returns the assignment sorted by variable name.
func (w World) String() string {
	names := slices.Sorted(maps.Keys(w.vars))
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + "=" + strconv.Itoa(w.vars[n])
	}
	return "{" + strings.Join(parts, ",") + "}"
}
