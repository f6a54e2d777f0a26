package events

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const inlineSource = "<inline>"

type (
	// TOMLBootstrap registers listeners declared in a TOML document:
	//
	//	[[listener]]
	//	event    = "user.created"
	//	handler  = "send_welcome_mail"
	//	priority = "high"  # or "normal", "low", or any integer
	//
	// Each handler becomes a Ref into the catalog, so handlers may be bound after the
	// document is loaded. The document is validated as a whole before anything is
	// registered.
	TOMLBootstrap struct {
		path    string
		data    []byte
		catalog *Catalog
	}

	tomlDocument struct {
		Listeners []tomlListener `toml:"listener"`
	}

	tomlListener struct {
		Event    string `toml:"event"`
		Handler  string `toml:"handler"`
		Priority any    `toml:"priority"`
	}

	binding struct {
		event    string
		handler  string
		priority Priority
	}
)

// NewTOMLFileBootstrap reads the document at path when the dispatcher bootstraps.
func NewTOMLFileBootstrap(path string, catalog *Catalog) *TOMLBootstrap {
	return &TOMLBootstrap{path: path, catalog: catalog}
}

// NewTOMLBootstrap uses an in-memory document.
func NewTOMLBootstrap(data []byte, catalog *Catalog) *TOMLBootstrap {
	return &TOMLBootstrap{data: data, catalog: catalog}
}

func (t *TOMLBootstrap) source() string {
	if t.path != "" {
		return t.path
	}
	return inlineSource
}

func (t *TOMLBootstrap) Bootstrap(d *Dispatcher) error {
	data := t.data
	if t.path != "" {
		bts, err := os.ReadFile(t.path)
		if err != nil {
			return newConfigurationError(t.path, err)
		}
		data = bts
	}

	bindings, err := t.parse(data)
	if err != nil {
		return newConfigurationError(t.source(), err)
	}

	for _, b := range bindings {
		d.OnPriority(b.event, t.catalog.Ref(b.handler), b.priority)
	}

	return nil
}

func (t *TOMLBootstrap) parse(data []byte) ([]binding, error) {
	if t.catalog == nil {
		return nil, errors.New("no handler catalog")
	}

	var doc tomlDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "cannot parse listeners")
	}

	bindings := make([]binding, 0, len(doc.Listeners))
	for i, l := range doc.Listeners {
		if l.Event == "" {
			return nil, errors.Errorf("listener #%d: missing event", i)
		}
		if l.Handler == "" {
			return nil, errors.Errorf("listener #%d: missing handler", i)
		}

		priority, err := tomlPriority(l.Priority)
		if err != nil {
			return nil, errors.Wrapf(err, "listener #%d", i)
		}

		bindings = append(bindings, binding{
			event:    l.Event,
			handler:  l.Handler,
			priority: priority,
		})
	}

	return bindings, nil
}

func tomlPriority(raw any) (Priority, error) {
	switch v := raw.(type) {
	case nil:
		return PriorityNormal, nil
	case int64:
		return Priority(v), nil
	case string:
		if p, ok := ParsePriority(v); ok {
			return p, nil
		}
		return 0, errors.Errorf("unknown priority %q", v)
	default:
		return 0, errors.Errorf("priority must be an integer or a name, got %T", raw)
	}
}
