package dialect

import (
	"sync"
)

// Dialect represents the backend-specific parts of statement generation:
// identifier quoting and parameter placeholders.
// Each backend (MySQL, PostgreSQL, MongoDB, etc.) registers one under its driver name.
type Dialect interface {
	// Name returns the driver name the dialect is registered under
	Name() string
	// Quote validates a table or column name and wraps it in backend-specific quotes
	Quote(name string) (string, error)
	// Placeholder returns the parameter placeholder for the 1-based index
	Placeholder(index int) string
}

var (
	mu       sync.RWMutex
	dialects = make(map[string]Dialect)
)

// Register registers a new dialect for a given driver name
func Register(name string, d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[name] = d
}

// Get retrieves a registered dialect by driver name
func Get(name string) (Dialect, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := dialects[name]
	return d, ok
}

// Names returns the registered driver names.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	return names
}
