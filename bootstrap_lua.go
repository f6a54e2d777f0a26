package events

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
)

const luaEventsGlobal = "events"

type (
	// LuaBootstrap loads registrations from a Lua script. The script sees a global
	// `events` table bound to the dispatcher being bootstrapped:
	//
	//	events.on("user.created", function(name)
	//	    print("welcome " .. name)
	//	end, EVENTS_PRIORITY_HIGH)
	//
	// `events:on(...)` works too. Registered Lua functions become listeners; returning
	// false from one stops dispatch. The Lua state stays alive until Close, after which
	// those listeners are skipped. Lua states are single threaded, so listeners loaded
	// this way must be triggered from one goroutine at a time. Close may be called from
	// any goroutine, but not while one of these listeners is running.
	LuaBootstrap struct {
		path   string
		code   string
		funcs  map[string]lua.LGFunction
		logger Logger

		mu     sync.Mutex
		states []*lua.LState
		closed bool
	}

	LuaOption func(*LuaBootstrap)

	luaListener struct {
		owner *LuaBootstrap
		state *lua.LState
		fn    *lua.LFunction
	}

	luaRegistration struct {
		event    string
		listener *luaListener
		priority Priority
	}
)

// WithLuaFunction exposes a Go function to the script as a global.
func WithLuaFunction(name string, fn lua.LGFunction) LuaOption {
	return func(b *LuaBootstrap) {
		b.funcs[name] = fn
	}
}

func WithLuaLogger(logger Logger) LuaOption {
	return func(b *LuaBootstrap) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewLuaFileBootstrap runs the script at path when the dispatcher bootstraps.
func NewLuaFileBootstrap(path string, opts ...LuaOption) *LuaBootstrap {
	return newLuaBootstrap(path, "", opts)
}

// NewLuaBootstrap runs an in-memory script.
func NewLuaBootstrap(code string, opts ...LuaOption) *LuaBootstrap {
	return newLuaBootstrap("", code, opts)
}

func newLuaBootstrap(path, code string, opts []LuaOption) *LuaBootstrap {
	b := &LuaBootstrap{
		path:   path,
		code:   code,
		funcs:  make(map[string]lua.LGFunction),
		logger: NoopLogger,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithField("bootstrap", "lua")
	return b
}

func (b *LuaBootstrap) source() string {
	if b.path != "" {
		return b.path
	}
	return inlineSource
}

// Bootstrap runs the script in a fresh Lua state. Registrations are only applied to d
// once the whole script has run without error.
func (b *LuaBootstrap) Bootstrap(d *Dispatcher) error {
	if b.isClosed() {
		return newConfigurationError(b.source(), ErrScriptClosed)
	}

	if b.path != "" {
		info, err := os.Stat(b.path)
		if err != nil {
			return newConfigurationError(b.path, err)
		}
		if info.IsDir() {
			return newConfigurationError(b.path, errors.New("not a regular file"))
		}
	}

	L := newLuaState()

	var pending []luaRegistration
	b.install(L, &pending)

	if err := b.run(L); err != nil {
		L.Close()
		return newConfigurationError(b.source(), err)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		L.Close()
		return newConfigurationError(b.source(), ErrScriptClosed)
	}
	b.states = append(b.states, L)
	b.mu.Unlock()

	for _, r := range pending {
		d.OnPriority(r.event, r.listener, r.priority)
	}
	b.logger.Debugf("registered %d listeners from %s", len(pending), b.source())

	return nil
}

// Close releases every Lua state created by Bootstrap. Listeners loaded from them are
// no longer callable.
func (b *LuaBootstrap) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, L := range b.states {
		L.Close()
	}
	b.states = nil
}

func (b *LuaBootstrap) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.closed
}

func (b *LuaBootstrap) run(L *lua.LState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("lua panic: %v", r)
		}
	}()

	if b.path != "" {
		return L.DoFile(b.path)
	}
	return L.DoString(b.code)
}

func newLuaState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	return L
}

func (b *LuaBootstrap) install(L *lua.LState, pending *[]luaRegistration) {
	L.SetGlobal("EVENTS_PRIORITY_HIGH", lua.LNumber(PriorityHigh))
	L.SetGlobal("EVENTS_PRIORITY_NORMAL", lua.LNumber(PriorityNormal))
	L.SetGlobal("EVENTS_PRIORITY_LOW", lua.LNumber(PriorityLow))

	for name, fn := range b.funcs {
		L.SetGlobal(name, L.NewFunction(fn))
	}

	events := L.NewTable()
	L.SetField(events, "on", L.NewFunction(func(L *lua.LState) int {
		base := 1
		if t, ok := L.Get(1).(*lua.LTable); ok && t == events {
			base = 2
		}

		event := L.CheckString(base)
		fn := L.CheckFunction(base + 1)
		priority := Priority(L.OptInt(base+2, int(PriorityNormal)))

		*pending = append(*pending, luaRegistration{
			event:    event,
			listener: &luaListener{owner: b, state: L, fn: fn},
			priority: priority,
		})
		return 0
	}))
	L.SetGlobal(luaEventsGlobal, events)
}

func (l *luaListener) Callable() bool {
	return l != nil && !l.owner.isClosed()
}

// Handle calls the Lua function. A Lua runtime error panics, like a failing Go
// listener would.
func (l *luaListener) Handle(args ...any) any {
	largs := make([]lua.LValue, len(args))
	for i, arg := range args {
		largs[i] = toLuaValue(l.state, arg)
	}

	err := l.state.CallByParam(lua.P{Fn: l.fn, NRet: 1, Protect: true}, largs...)
	if err != nil {
		panic(errors.Wrap(err, "lua listener failed"))
	}

	ret := l.state.Get(-1)
	l.state.Pop(1)

	return fromLuaValue(ret)
}

func toLuaValue(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint:
		return lua.LNumber(val)
	case uint32:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case Priority:
		return lua.LNumber(val)
	case []string:
		t := L.NewTable()
		for _, s := range val {
			t.Append(lua.LString(s))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, toLuaValue(L, item))
		}
		return t
	default:
		ud := L.NewUserData()
		ud.Value = v
		return ud
	}
}

func fromLuaValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LNilType:
		return nil
	case *lua.LUserData:
		return val.Value
	default:
		return v
	}
}
