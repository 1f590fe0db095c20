package paymaster

import (
	"fmt"
	"sync"

	"github.com/elysium-stays/bookingledger/internal/domain"
	"github.com/google/uuid"
)

// Grant is a provisional, single-use authorization to cover the execution
// cost of exactly one submission attempt. The reserved cost is held against
// the paymaster balance from issuance until Settle or Release.
type Grant struct {
	ID        string
	Cost      uint64
	BookingID domain.BookingID
}

// RequestContext identifies the request a grant is evaluated for.
type RequestContext struct {
	BookingID domain.BookingID
	UserID    string
}

// Paymaster underwrites execution costs out of its own balance. A grant
// reserves funds at issuance, so two concurrent requests can never jointly
// over-commit the balance.
type Paymaster struct {
	mu          sync.Mutex
	balance     uint64
	reserved    uint64
	outstanding map[string]uint64 // grant id -> reserved cost

	totalSponsored uint64
	grantCount     uint64
}

func New(initialBalance uint64) *Paymaster {
	return &Paymaster{
		balance:     initialBalance,
		outstanding: make(map[string]uint64),
	}
}

// Deposit adds sponsorship funds.
func (p *Paymaster) Deposit(amount uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balance += amount
}

// AvailableBalance returns the settled balance not held by outstanding grants.
func (p *Paymaster) AvailableBalance() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance - p.reserved
}

// Authorize decides whether to underwrite cost for the given request.
// On success the cost is reserved and a single-use grant returned; the
// submission step must finish with Settle or Release.
func (p *Paymaster) Authorize(cost uint64, req RequestContext) (*Grant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.balance-p.reserved < cost {
		return nil, fmt.Errorf("%w: need %d, available %d", domain.ErrInsufficientSponsorFunds, cost, p.balance-p.reserved)
	}

	grant := &Grant{
		ID:        uuid.NewString(),
		Cost:      cost,
		BookingID: req.BookingID,
	}
	p.reserved += cost
	p.outstanding[grant.ID] = cost
	p.grantCount++
	return grant, nil
}

// Settle consumes a grant after an accepted submission, paying actualCost
// out of the balance and releasing any unused remainder of the reservation.
func (p *Paymaster) Settle(grant *Grant, actualCost uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	reserved, ok := p.outstanding[grant.ID]
	if !ok {
		return domain.ErrGrantConsumed
	}
	delete(p.outstanding, grant.ID)
	p.reserved -= reserved

	if actualCost > reserved {
		actualCost = reserved
	}
	p.balance -= actualCost
	p.totalSponsored += actualCost
	return nil
}

// Release consumes a grant after a failed or abandoned submission, restoring
// the full reservation. A retry needs a fresh Authorize decision.
func (p *Paymaster) Release(grant *Grant) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	reserved, ok := p.outstanding[grant.ID]
	if !ok {
		return domain.ErrGrantConsumed
	}
	delete(p.outstanding, grant.ID)
	p.reserved -= reserved
	return nil
}

// Stats reports the total cost sponsored and the number of grants issued.
func (p *Paymaster) Stats() (totalSponsored uint64, grantCount uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalSponsored, p.grantCount
}
