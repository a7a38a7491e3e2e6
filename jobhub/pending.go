package jobhub

import "sync"

// PendingRequests tracks users with an outstanding, unresolved
// verification request. It is the sole mechanism preventing duplicate
// simultaneous requests, and does not survive a restart.
//
// discordgo dispatches gateway events on separate goroutines, so unlike
// the equivalent single-threaded event-loop design, check-and-insert
// must hold a lock to stay atomic.
type PendingRequests struct {
	mu    sync.Mutex
	users map[string]struct{}
}

func NewPendingRequests() *PendingRequests {
	return &PendingRequests{users: map[string]struct{}{}}
}

// TryAcquire inserts the user and returns true, or returns false if the
// user already has a pending request.
func (p *PendingRequests) TryAcquire(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.users[userID]; exists {
		return false
	}
	p.users[userID] = struct{}{}
	return true
}

// Release removes the user's pending request. No-op if absent.
func (p *PendingRequests) Release(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.users, userID)
}

// Has reports whether the user has a pending request.
func (p *PendingRequests) Has(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, exists := p.users[userID]
	return exists
}

// Len returns the number of pending requests.
func (p *PendingRequests) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.users)
}
