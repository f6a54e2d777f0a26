package events

import (
	"slices"
	"sort"

	"github.com/google/uuid"
)

type (
	entry struct {
		priority Priority
		listener Listener
	}

	// bucket holds the registrations of one event. sorted is true iff entries are in
	// ascending priority order, ties in registration order.
	bucket struct {
		sorted  bool
		entries []entry
	}

	// Dispatcher maps event names to priority ordered listeners.
	//
	// A Dispatcher is not safe for concurrent use; wrap it in a SyncDispatcher or keep one
	// per goroutine. It is reentrant: listeners may register, remove or trigger on the
	// dispatcher that is invoking them.
	Dispatcher struct {
		id        string
		logger    Logger
		listeners map[string]*bucket

		bootstrap     Bootstrapper
		bootstrapped  bool
		bootstrapping bool
	}
)

// New creates an empty dispatcher. bootstrap runs on first use; nil means there is
// nothing to load.
func New(bootstrap Bootstrapper, opts ...Option) *Dispatcher {
	if bootstrap == nil {
		bootstrap = NoopBootstrap
	}

	d := &Dispatcher{
		id:        uuid.NewString(),
		logger:    NoopLogger,
		listeners: make(map[string]*bucket),
		bootstrap: bootstrap,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.logger = d.logger.WithField("dispatcher", d.id)

	return d
}

// ID returns the identifier the dispatcher logs with.
func (d *Dispatcher) ID() string {
	return d.id
}

// On registers listener for event with PriorityNormal.
func (d *Dispatcher) On(event string, listener Listener) {
	d.OnPriority(event, listener, PriorityNormal)
}

// OnPriority registers listener for event. The same listener may be registered any
// number of times; each registration is invoked and removed independently.
func (d *Dispatcher) OnPriority(event string, listener Listener, priority Priority) {
	b, found := d.listeners[event]
	if !found {
		d.listeners[event] = &bucket{
			sorted:  true,
			entries: []entry{{priority: priority, listener: listener}},
		}
		return
	}

	b.sorted = len(b.entries) == 0
	b.entries = append(b.entries, entry{priority: priority, listener: listener})
}

// Bootstrap runs the bootstrap source if it has not completed yet. Every other
// read or removal calls it first, so calling it directly is only needed to load
// registrations eagerly. A failed run is not recorded and will be attempted again.
func (d *Dispatcher) Bootstrap() error {
	if d.bootstrapped || d.bootstrapping {
		return nil
	}

	d.bootstrapping = true
	defer func() { d.bootstrapping = false }()

	d.logger.Debug("bootstrapping listeners")

	if err := d.bootstrap.Bootstrap(d); err != nil {
		err = wrapConfigurationError("bootstrap", err)
		d.logger.Errorf("cannot bootstrap listeners: %s", err)
		return err
	}

	d.bootstrapped = true
	d.logger.Debugf("bootstrapped listeners for %d events", len(d.listeners))

	return nil
}

// Listeners returns the listeners of event in dispatch order. The slice is a copy,
// so it is safe to keep while the dispatcher changes.
func (d *Dispatcher) Listeners(event string) ([]Listener, error) {
	if err := d.Bootstrap(); err != nil {
		return nil, err
	}

	return d.ordered(event), nil
}

func (d *Dispatcher) ordered(event string) []Listener {
	b, found := d.listeners[event]
	if !found {
		return []Listener{}
	}

	if !b.sorted {
		sort.SliceStable(b.entries, func(i, j int) bool {
			return b.entries[i].priority < b.entries[j].priority
		})
		b.sorted = true
		d.logger.Debugf("sorted %d listeners of %q", len(b.entries), event)
	}

	result := make([]Listener, len(b.entries))
	for i, e := range b.entries {
		result[i] = e.listener
	}
	return result
}

// Trigger invokes the listeners of event in priority order, passing args to each.
// It returns false as soon as a listener returns false, and true otherwise,
// including when event has no listeners. Listeners that cannot be called are
// skipped. A panicking listener is not recovered.
func (d *Dispatcher) Trigger(event string, args ...any) (bool, error) {
	if err := d.Bootstrap(); err != nil {
		return false, err
	}

	return d.dispatch(event, d.ordered(event), args), nil
}

func (d *Dispatcher) dispatch(event string, listeners []Listener, args []any) bool {
	for i, listener := range listeners {
		if !isCallable(listener) {
			continue
		}

		if IsHalt(listener.Handle(args...)) {
			d.logger.Debugf("listener #%d of %q halted dispatch", i, event)
			return false
		}
	}

	return true
}

// RemoveListener removes the first registration of listener under event, in stored
// order. It reports whether a registration was removed.
func (d *Dispatcher) RemoveListener(event string, listener Listener) (bool, error) {
	if err := d.Bootstrap(); err != nil {
		return false, err
	}

	b, found := d.listeners[event]
	if !found {
		return false, nil
	}

	for i, e := range b.entries {
		if sameListener(e.listener, listener) {
			b.entries = slices.Delete(b.entries, i, i+1)
			return true, nil
		}
	}

	return false, nil
}

// RemoveAllListeners drops every listener of the given events, or of all events when
// none is given. Unknown events are ignored.
func (d *Dispatcher) RemoveAllListeners(events ...string) (*Dispatcher, error) {
	if err := d.Bootstrap(); err != nil {
		return d, err
	}

	if len(events) == 0 {
		d.listeners = make(map[string]*bucket)
		return d, nil
	}

	for _, event := range events {
		delete(d.listeners, event)
	}

	return d, nil
}

// HasListeners reports whether event has at least one registration.
func (d *Dispatcher) HasListeners(event string) (bool, error) {
	if err := d.Bootstrap(); err != nil {
		return false, err
	}

	b, found := d.listeners[event]
	return found && len(b.entries) > 0, nil
}

// Events returns the names of all events with a bucket, sorted.
func (d *Dispatcher) Events() ([]string, error) {
	if err := d.Bootstrap(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(d.listeners))
	for name := range d.listeners {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}
