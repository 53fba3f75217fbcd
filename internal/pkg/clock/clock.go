package clock

import (
	"sync"
	"time"
)

// Clock 时间来源，业务代码不直接调用 time.Now
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// Real 系统时钟
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

// Mock 测试用时钟，可在并发场景下安全读写
type Mock struct {
	mu      sync.RWMutex
	current time.Time
}

func NewMock(start time.Time) *Mock {
	return &Mock{current: start}
}

func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
}

func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.current = m.current.Add(d)
	m.mu.Unlock()
}
