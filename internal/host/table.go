package host

import (
	"fmt"
	"sort"
	"sync"

	"github.com/warmstand/warmstand/internal/errz"
)

// Table is the name-keyed function table for one host instance.
type Table struct {
	functions map[string]*Function
	mutex     sync.RWMutex
}

// NewTable creates an empty function table.
func NewTable() *Table {
	return &Table{
		functions: make(map[string]*Function),
	}
}

// Get retrieves a function by name. Matching is exact and case-sensitive.
func (t *Table) Get(name string) (*Function, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	fn, ok := t.functions[name]
	return fn, ok
}

// Add inserts a function into the table. Names must be unique.
func (t *Table) Add(fn *Function) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if _, exists := t.functions[fn.Name]; exists {
		return fmt.Errorf("%w: %q", errz.ErrDuplicateName, fn.Name)
	}
	t.functions[fn.Name] = fn
	return nil
}

// Len returns the number of registered functions.
func (t *Table) Len() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return len(t.functions)
}

// Names returns the registered function names, sorted.
func (t *Table) Names() []string {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	names := make([]string, 0, len(t.functions))
	for name := range t.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
