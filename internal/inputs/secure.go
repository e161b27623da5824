package inputs

import (
	"runtime"
	"sync"
)

// secureBytes holds decrypted key material in locked memory until it is
// destroyed. Locking is best effort.
type secureBytes struct {
	mu     sync.Mutex
	data   []byte
	locked bool
}

// newSecureBytes copies data into a fresh locked buffer. The caller still
// owns data and should zero it.
func newSecureBytes(data []byte) *secureBytes {
	sb := &secureBytes{data: make([]byte, len(data))}
	sb.locked = mlock(sb.data)
	copy(sb.data, data)

	runtime.SetFinalizer(sb, func(s *secureBytes) {
		s.destroy()
	})
	return sb
}

// bytes returns the buffer, or nil after destroy.
func (s *secureBytes) bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// destroy zeros and unlocks the buffer. Safe to call multiple times.
func (s *secureBytes) destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return
	}
	zero(s.data)
	if s.locked {
		munlock(s.data)
		s.locked = false
	}
	s.data = nil
	runtime.SetFinalizer(s, nil)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
