package events

import "sort"

type (
	// Catalog holds listeners under names, so registrations can refer to a listener
	// before it exists. Declarative bootstrap sources register Refs into a Catalog.
	Catalog struct {
		listeners map[string]Listener
	}

	// Ref is a late-bound listener: it looks its name up in the catalog each time it is
	// invoked. A Ref whose name is missing is not callable and is skipped on Trigger.
	// Two Refs are equal when they point at the same catalog and name.
	Ref struct {
		catalog *Catalog
		name    string
	}
)

func NewCatalog() *Catalog {
	return &Catalog{listeners: make(map[string]Listener)}
}

// Set binds name to listener, replacing any previous binding.
func (c *Catalog) Set(name string, listener Listener) *Catalog {
	c.listeners[name] = listener
	return c
}

// SetFunc is Set for a plain function.
func (c *Catalog) SetFunc(name string, fn func(args ...any) any) *Catalog {
	return c.Set(name, Func(fn))
}

func (c *Catalog) Get(name string) (Listener, bool) {
	l, found := c.listeners[name]
	return l, found
}

// Delete unbinds name. Refs to it stop being callable.
func (c *Catalog) Delete(name string) {
	delete(c.listeners, name)
}

// Names returns the bound names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.listeners))
	for name := range c.listeners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ref returns a late-bound reference to name.
func (c *Catalog) Ref(name string) Ref {
	return Ref{catalog: c, name: name}
}

func (r Ref) Name() string {
	return r.name
}

func (r Ref) Callable() bool {
	if r.catalog == nil {
		return false
	}
	l, found := r.catalog.Get(r.name)
	return found && isCallable(l)
}

// Handle invokes the bound listener. An unbound or uncallable name does nothing and
// returns nil, which does not stop dispatch.
func (r Ref) Handle(args ...any) any {
	if !r.Callable() {
		return nil
	}
	l, _ := r.catalog.Get(r.name)
	return l.Handle(args...)
}
