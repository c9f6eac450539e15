package storage

import "sync"

// Mem is an in-memory Provider. SaveErr, when set, is returned by every Save
// to simulate a full or unavailable backend.
type Mem struct {
	mu      sync.RWMutex
	data    map[string][]byte
	SaveErr error
}

// NewMem creates an empty in-memory provider.
func NewMem() *Mem {
	return &Mem{data: make(map[string][]byte)}
}

// Load implements Provider.
func (m *Mem) Load(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Save implements Provider.
func (m *Mem) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

// Delete implements Provider.
func (m *Mem) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
