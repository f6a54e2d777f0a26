package events

type Option func(*Dispatcher)

// WithLogger sets the logger the dispatcher reports bootstrap and dispatch activity to.
func WithLogger(logger Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithID overrides the generated dispatcher id used in log fields.
func WithID(id string) Option {
	return func(d *Dispatcher) {
		d.id = id
	}
}
