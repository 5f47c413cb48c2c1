package states

import (
	"sync"
	"time"
)

// Manager keeps per-chat purchase state in memory
type Manager struct {
	mu        sync.RWMutex
	purchases map[int64]*Purchase
	now       func() time.Time
}

// NewManager creates a new state manager
func NewManager() *Manager {
	return &Manager{
		purchases: make(map[int64]*Purchase),
		now:       time.Now,
	}
}

// Get returns a copy of the chat's purchase state
func (m *Manager) Get(chatID int64) (Purchase, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.purchases[chatID]
	if !exists {
		return Purchase{}, false
	}
	return *p, true
}

// SetLanguage starts (or restarts) a purchase for the chat. Picking a
// language again resets any previously chosen method.
func (m *Manager) SetLanguage(chatID int64, lang Language) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purchases[chatID] = &Purchase{
		Language:  lang,
		UpdatedAt: m.now(),
	}
}

// SetMethod records the payment method. Returns false when the chat has no
// active purchase.
func (m *Manager) SetMethod(chatID int64, method Method) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.purchases[chatID]
	if !exists {
		return false
	}
	p.Method = method
	p.UpdatedAt = m.now()
	return true
}

// SetBankCountry records the destination country for a bank transfer.
// Returns false when the chat has no active purchase.
func (m *Manager) SetBankCountry(chatID int64, country BankCountry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.purchases[chatID]
	if !exists {
		return false
	}
	p.BankCountry = country
	p.UpdatedAt = m.now()
	return true
}

// Claim atomically removes and returns the chat's purchase state. A second
// Claim for the same chat returns false, which makes delivery idempotent
// under replayed callbacks.
func (m *Manager) Claim(chatID int64) (Purchase, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.purchases[chatID]
	if !exists {
		return Purchase{}, false
	}
	delete(m.purchases, chatID)
	return *p, true
}

// Clear removes the chat's purchase state
func (m *Manager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.purchases, chatID)
}

// PurgeStale drops purchases not touched within maxAge and returns how many
// were removed
func (m *Manager) PurgeStale(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0
	for chatID, p := range m.purchases {
		if p.UpdatedAt.Before(cutoff) {
			delete(m.purchases, chatID)
			removed++
		}
	}
	return removed
}
