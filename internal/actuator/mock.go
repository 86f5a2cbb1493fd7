package actuator

import (
	"fmt"
	"sync"
)

// MockPort is an in-memory Porter for tests. Writes are recorded; each Read
// returns the next queued reply frame.
type MockPort struct {
	mu      sync.Mutex
	writes  [][]byte
	replies [][]byte
	closed  bool
}

// NewMockPort creates an empty mock port.
func NewMockPort() *MockPort {
	return &MockPort{}
}

// QueueReply appends a frame to be returned by the next Read.
func (m *MockPort) QueueReply(frame []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, frame)
}

// Writes returns every frame written so far.
func (m *MockPort) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

func (m *MockPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, fmt.Errorf("write on closed mock port")
	}
	frame := make([]byte, len(p))
	copy(frame, p)
	m.writes = append(m.writes, frame)
	return len(p), nil
}

func (m *MockPort) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, fmt.Errorf("read on closed mock port")
	}
	if len(m.replies) == 0 {
		// A real port with a read timeout returns zero bytes when the bus
		// is silent.
		return 0, nil
	}
	n := copy(p, m.replies[0])
	if n == len(m.replies[0]) {
		m.replies = m.replies[1:]
	} else {
		m.replies[0] = m.replies[0][n:]
	}
	return n, nil
}

func (m *MockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
