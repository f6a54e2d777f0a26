package events

import (
	"github.com/stretchr/testify/mock"
)

type mockListener struct {
	mock.Mock
}

func (m *mockListener) Handle(args ...any) any {
	ret := m.Called(args...)
	return ret.Get(0)
}
