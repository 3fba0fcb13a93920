package firewall

import "github.com/stretchr/testify/mock"

// MockRunner is a testify mock for jail.Runner.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(argv []string, capMask uint64) int {
	args := m.Called(argv, capMask)
	return args.Int(0)
}
