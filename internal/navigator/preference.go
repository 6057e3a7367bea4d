package navigator

import "sync"

// MemoryPreference keeps the language in memory. The HTTP layer uses a
// cookie-backed Preference instead.
type MemoryPreference struct {
	mu   sync.RWMutex
	code string
}

func NewMemoryPreference(code string) *MemoryPreference {
	return &MemoryPreference{code: code}
}

func (p *MemoryPreference) Language() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.code, p.code != ""
}

func (p *MemoryPreference) SetLanguage(code string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.code = code
	return nil
}
