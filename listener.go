package events

import (
	"reflect"
)

type (
	// Listener is anything that can be registered against an event. Handle receives the
	// arguments given to Trigger. Returning the bool value false stops dispatch; any other
	// result, nil included, lets the next listener run.
	Listener interface {
		Handle(args ...any) any
	}

	// ListenerFunc adapts a plain function. Values of this type are not comparable, so they
	// are removed by function pointer equality. Use Func when identity matters.
	ListenerFunc func(args ...any) any

	// funcListener gives a closure pointer identity.
	funcListener struct {
		fn func(args ...any) any
	}

	// callable is implemented by listeners that can become unusable after registration.
	callable interface {
		Callable() bool
	}
)

func (f ListenerFunc) Handle(args ...any) any {
	return f(args...)
}

func (f ListenerFunc) Callable() bool {
	return f != nil
}

// Func wraps fn into a Listener that is only equal to itself, so the returned value can
// later be handed to RemoveListener.
func Func(fn func(args ...any) any) Listener {
	return &funcListener{fn: fn}
}

func (f *funcListener) Handle(args ...any) any {
	return f.fn(args...)
}

func (f *funcListener) Callable() bool {
	return f != nil && f.fn != nil
}

// IsHalt reports whether a listener result stops dispatch. Only the bool false does;
// nil, zero values and empty strings do not.
func IsHalt(result any) bool {
	b, ok := result.(bool)
	return ok && !b
}

func isCallable(l Listener) bool {
	if l == nil {
		return false
	}

	if c, ok := l.(callable); ok {
		return c.Callable()
	}

	v := reflect.ValueOf(l)
	switch v.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Interface, reflect.Chan, reflect.Slice:
		return !v.IsNil()
	}

	return true
}

func sameListener(a, b Listener) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return sameValue(reflect.ValueOf(a), reflect.ValueOf(b))
}

// sameValue is == for values that support it. Functions, including those held in
// struct fields or interfaces, compare by code pointer; anything else that cannot
// be compared is never equal.
func sameValue(a, b reflect.Value) bool {
	if a.Type() != b.Type() {
		return false
	}

	if a.Comparable() && b.Comparable() {
		return a.Equal(b)
	}

	switch a.Kind() {
	case reflect.Func:
		return a.Pointer() == b.Pointer()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return sameValue(a.Elem(), b.Elem())
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !sameValue(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if !sameValue(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	}

	return false
}
