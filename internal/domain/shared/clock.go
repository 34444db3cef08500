package shared

import "time"

// Clock supplies timestamps for snapshots and progress reporting
type Clock interface {
	Now() time.Time
}

// RealClock reads the system time in UTC
type RealClock struct{}

// Now returns the current system time in UTC
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// NewRealClock creates a RealClock instance
func NewRealClock() Clock {
	return RealClock{}
}

// MockClock is a Clock that only moves when told to
type MockClock struct {
	CurrentTime time.Time
}

// NewMockClock creates a MockClock starting at startTime
func NewMockClock(startTime time.Time) *MockClock {
	return &MockClock{CurrentTime: startTime}
}

// Now returns the mock's current time
func (m *MockClock) Now() time.Time {
	return m.CurrentTime
}

// Advance moves the mock clock forward by d
func (m *MockClock) Advance(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}
