package events

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func recordFunc(rec *recorder) lua.LGFunction {
	return func(L *lua.LState) int {
		rec.calls = append(rec.calls, L.CheckString(1))
		return 0
	}
}

func TestLuaBootstrapFile(t *testing.T) {
	rec := &recorder{}
	source := NewLuaFileBootstrap("testdata/priorities.lua", WithLuaFunction("record", recordFunc(rec)))
	defer source.Close()
	d := New(source)

	listeners, err := d.Listeners("priorities")
	require.NoError(t, err)
	assert.Len(t, listeners, 3)

	ok, err := d.Trigger("priorities")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"first", "middle", "last"}, rec.calls)
}

func TestLuaListenerArguments(t *testing.T) {
	rec := &recorder{}
	source := NewLuaBootstrap(`
		events.on("greet", function(name, n, flag, tags)
			record(name .. ":" .. tostring(n) .. ":" .. tostring(flag) .. ":" .. tags[2])
		end)
	`, WithLuaFunction("record", recordFunc(rec)))
	defer source.Close()
	d := New(source)

	_, err := d.Trigger("greet", "bob", 3, true, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob:3:true:b"}, rec.calls)
}

func TestLuaListenerHaltsOnFalseOnly(t *testing.T) {
	rec := &recorder{}
	source := NewLuaBootstrap(`
		events.on("event", function() record("nil") return nil end, 1)
		events.on("event", function() record("zero") return 0 end, 2)
		events.on("event", function() record("empty") return "" end, 3)
		events.on("event", function() record("stop") return false end, 4)
		events.on("event", function() record("never") end, 5)
	`, WithLuaFunction("record", recordFunc(rec)))
	defer source.Close()
	d := New(source)

	ok, err := d.Trigger("event")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"nil", "zero", "empty", "stop"}, rec.calls)
}

func TestLuaListenerResult(t *testing.T) {
	source := NewLuaBootstrap(`events.on("sum", function(a, b) return a + b end)`)
	defer source.Close()
	d := New(source)

	listeners, err := d.Listeners("sum")
	require.NoError(t, err)
	require.Len(t, listeners, 1)
	assert.Equal(t, 5.0, listeners[0].Handle(2, 3))
}

func TestLuaListenerRuntimeErrorPanics(t *testing.T) {
	source := NewLuaBootstrap(`events.on("event", function() error("broken listener") end)`)
	defer source.Close()
	d := New(source)

	assert.Panics(t, func() {
		_, _ = d.Trigger("event")
	})
}

func TestLuaListenerRemoval(t *testing.T) {
	source := NewLuaBootstrap(`
		events.on("event", function() return false end)
		events.on("event", function() return true end)
	`)
	defer source.Close()
	d := New(source)

	listeners, err := d.Listeners("event")
	require.NoError(t, err)
	require.Len(t, listeners, 2)

	removed, err := d.RemoveListener("event", listeners[0])
	require.NoError(t, err)
	assert.True(t, removed)

	ok, err := d.Trigger("event")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLuaBootstrapMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.lua")
	source := NewLuaFileBootstrap(path)
	defer source.Close()
	d := New(source)

	_, err := d.Trigger("event")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, path, cfgErr.Source)

	// Once the file exists the next access bootstraps.
	require.NoError(t, os.WriteFile(path, []byte(`events.on("event", function() return false end)`), 0o600))

	ok, err := d.Trigger("event")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLuaBootstrapDirectory(t *testing.T) {
	source := NewLuaFileBootstrap(t.TempDir())
	defer source.Close()

	_, err := New(source).Listeners("event")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLuaBootstrapScriptErrors(t *testing.T) {
	scripts := map[string]string{
		"syntax":        `events.on("event", function() end`,
		"runtime":       `events.on("event", function() end) error("late failure")`,
		"missing fn":    `events.on("event")`,
		"bad priority":  `events.on("event", function() end, "high")`,
		"unknown field": `events.off("event")`,
	}

	for name, script := range scripts {
		t.Run(name, func(t *testing.T) {
			source := NewLuaBootstrap(script)
			defer source.Close()
			d := New(source)

			_, err := d.Listeners("event")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)

			// Nothing from a failed run is registered.
			assert.Empty(t, d.listeners)
		})
	}
}

func TestLuaBootstrapClose(t *testing.T) {
	rec := &recorder{}
	source := NewLuaBootstrap(`events.on("event", function() record("lua") end)`,
		WithLuaFunction("record", recordFunc(rec)))
	d := New(source)
	d.OnPriority("event", rec.listener("go", nil), PriorityLow)

	_, err := d.Trigger("event")
	require.NoError(t, err)
	assert.Equal(t, []string{"lua", "go"}, rec.calls)

	source.Close()
	source.Close()
	rec.calls = nil

	ok, err := d.Trigger("event")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"go"}, rec.calls)

	err = New(source).Bootstrap()
	assert.ErrorIs(t, err, ErrScriptClosed)
}

func TestLuaBootstrapCloseFromAnotherGoroutine(t *testing.T) {
	source := NewLuaBootstrap(`events.on("event", function() return false end)`)
	d := NewSync(source)

	listeners, err := d.Listeners("event")
	require.NoError(t, err)
	require.Len(t, listeners, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		source.Close()
	}()
	for i := 0; i < 100; i++ {
		_ = isCallable(listeners[0])
	}
	wg.Wait()

	assert.False(t, isCallable(listeners[0]))

	ok, err := d.Trigger("event")
	require.NoError(t, err)
	assert.True(t, ok)
}
