package events

type (
	// Bootstrapper populates a dispatcher with its initial registrations. It runs once,
	// lazily, before the first lookup, trigger or removal, and is expected to call On or
	// OnPriority on the dispatcher it receives.
	Bootstrapper interface {
		Bootstrap(d *Dispatcher) error
	}

	BootstrapFunc func(d *Dispatcher) error
)

func (f BootstrapFunc) Bootstrap(d *Dispatcher) error {
	return f(d)
}

// NoopBootstrap registers nothing.
var NoopBootstrap Bootstrapper = BootstrapFunc(func(*Dispatcher) error { return nil })
