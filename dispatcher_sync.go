package events

import (
	"sync"
)

// SyncDispatcher guards a Dispatcher with a mutex so it can be shared between
// goroutines. The lock is released while listeners run, so a listener may call back
// into the SyncDispatcher that triggered it.
type SyncDispatcher struct {
	inner *Dispatcher
	lock  sync.Mutex
}

// NewSync creates a SyncDispatcher around a new Dispatcher. bootstrap receives the
// inner Dispatcher and runs with the lock held.
func NewSync(bootstrap Bootstrapper, opts ...Option) *SyncDispatcher {
	return &SyncDispatcher{inner: New(bootstrap, opts...)}
}

func (s *SyncDispatcher) On(event string, listener Listener) {
	s.OnPriority(event, listener, PriorityNormal)
}

func (s *SyncDispatcher) OnPriority(event string, listener Listener, priority Priority) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.inner.OnPriority(event, listener, priority)
}

func (s *SyncDispatcher) Bootstrap() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.inner.Bootstrap()
}

func (s *SyncDispatcher) Listeners(event string) ([]Listener, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.inner.Listeners(event)
}

// Trigger takes the ordered listeners under the lock and invokes them without it.
func (s *SyncDispatcher) Trigger(event string, args ...any) (bool, error) {
	s.lock.Lock()
	listeners, err := s.inner.Listeners(event)
	s.lock.Unlock()

	if err != nil {
		return false, err
	}

	return s.inner.dispatch(event, listeners, args), nil
}

func (s *SyncDispatcher) RemoveListener(event string, listener Listener) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.inner.RemoveListener(event, listener)
}

func (s *SyncDispatcher) RemoveAllListeners(events ...string) (*SyncDispatcher, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	_, err := s.inner.RemoveAllListeners(events...)
	return s, err
}

func (s *SyncDispatcher) HasListeners(event string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.inner.HasListeners(event)
}

func (s *SyncDispatcher) Events() ([]string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.inner.Events()
}
