package registry

import (
	"fmt"
	"sync"

	"github.com/elysium-stays/bookingledger/internal/domain"
)

// Registry tracks which users may book and which providers may be booked.
// Membership is shared mutable state: reads are concurrent, mutations
// serialized.
type Registry struct {
	mu        sync.RWMutex
	users     map[string]struct{}
	providers map[string]struct{}
}

func New() *Registry {
	return &Registry{
		users:     make(map[string]struct{}),
		providers: make(map[string]struct{}),
	}
}

// AuthorizeUser adds a user to the authorized set. Adding a user twice has
// no effect beyond confirming membership.
func (r *Registry) AuthorizeUser(userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID] = struct{}{}
	return nil
}

// ApproveProvider adds a provider code to the approved set. Idempotent.
func (r *Registry) ApproveProvider(providerCode string) error {
	if providerCode == "" {
		return fmt.Errorf("%w: provider code is required", domain.ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[providerCode] = struct{}{}
	return nil
}

func (r *Registry) IsUserAuthorized(userID string) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[userID]
	return ok, nil
}

func (r *Registry) IsProviderApproved(providerCode string) (bool, error) {
	if providerCode == "" {
		return false, fmt.Errorf("%w: provider code is required", domain.ErrInvalidArgument)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[providerCode]
	return ok, nil
}
