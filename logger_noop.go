package events

type noopLogger struct{}

// NoopLogger discards everything. It is the default logger of a Dispatcher.
var NoopLogger Logger = noopLogger{}

func (l noopLogger) WithField(string, any) Logger { return l }

func (noopLogger) Debug(...any) {}

func (noopLogger) Debugf(string, ...any) {}

func (noopLogger) Info(...any) {}

func (noopLogger) Infof(string, ...any) {}

func (noopLogger) Warn(...any) {}

func (noopLogger) Warnf(string, ...any) {}

func (noopLogger) Error(...any) {}

func (noopLogger) Errorf(string, ...any) {}
