package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/elysium-stays/bookingledger/internal/domain"
)

// Revert reason strings reported by the submission interface.
const (
	ReasonUserNotAuthorized   = "User not authorized"
	ReasonProviderNotApproved = "Provider not approved"
	ReasonBookingExists       = "Booking already exists"
	ReasonInvalidAmount       = "Invalid amount"
)

// Execution cost model: flat base charge plus a per-byte charge on the
// submitted call data.
const (
	createBaseCost  = 21000
	costPerDataByte = 16
)

// RevertError is a rejected submission. Error() is the revert reason string;
// Unwrap ties it into the domain error taxonomy.
type RevertError struct {
	Reason string
	kind   error
}

func (e *RevertError) Error() string { return e.Reason }
func (e *RevertError) Unwrap() error { return e.kind }

func revert(kind error, reason string) error {
	return &RevertError{Reason: reason, kind: kind}
}

// CreateParams is the submission payload for a booking creation call.
// EncodedAmount carries the fee as an ABI-style uint256 word. Sponsorship is
// the optional cost attachment; a nil attachment means the caller pays.
type CreateParams struct {
	BookingID     domain.BookingID
	UserID        string
	ProviderCode  string
	ResourceID    string
	EncodedAmount []byte
	Sponsorship   *SponsorshipParams
}

// SponsorshipParams attaches a paymaster grant to a submission.
type SponsorshipParams struct {
	GrantID string
}

// Event is emitted once per successful state change, for external observers
// doing reconciliation and indexing.
type Event struct {
	Type           string `json:"type"`
	BookingID      string `json:"booking_id"`
	UserID         string `json:"user_id"`
	ResourceID     string `json:"resource_id"`
	Amount         uint64 `json:"amount"`
	Status         string `json:"status"`
	EncodedAuxData []byte `json:"encoded_aux_data,omitempty"`
	SponsorGrantID string `json:"sponsor_grant_id,omitempty"`
	TxHash         string `json:"tx_hash,omitempty"`
}

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventBookingDisputed  = "booking_disputed"
	EventBookingResolved  = "booking_resolved"
)

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Authorizer is the registry view the ledger re-checks at execution time.
type Authorizer interface {
	IsUserAuthorized(userID string) (bool, error)
	IsProviderApproved(providerCode string) (bool, error)
}

// Ledger is the authoritative, append-only record store. Records are never
// deleted; cancellation, dispute and resolution are status transitions.
// All checks for a creation run inside one critical section, so at most one
// submission per BookingID ever succeeds.
type Ledger struct {
	mu       sync.Mutex
	records  map[domain.BookingID]*domain.BookingRecord
	registry Authorizer
	notifier Notifier
	nonce    uint64
}

func New(registry Authorizer, notifier Notifier) *Ledger {
	return &Ledger{
		records:  make(map[domain.BookingID]*domain.BookingRecord),
		registry: registry,
		notifier: notifier,
	}
}

// EstimateCost returns the execution cost for the exact parameters that will
// be submitted. Estimation and submission must use the same parameters.
func (l *Ledger) EstimateCost(params CreateParams) uint64 {
	dataLen := len(params.BookingID) + len(params.UserID) + len(params.ProviderCode) +
		len(params.ResourceID) + len(params.EncodedAmount)
	return createBaseCost + costPerDataByte*uint64(dataLen)
}

// SubmitCreate executes a booking creation. Exactly one submission per
// BookingID succeeds; all others observe a revert. Authorization is checked
// against the registry's state at execution time, not request time.
func (l *Ledger) SubmitCreate(ctx context.Context, params CreateParams) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	l.mu.Lock()

	ok, err := l.registry.IsUserAuthorized(params.UserID)
	if err != nil {
		l.mu.Unlock()
		return "", err
	}
	if !ok {
		l.mu.Unlock()
		return "", revert(domain.ErrUnauthorized, ReasonUserNotAuthorized)
	}

	ok, err = l.registry.IsProviderApproved(params.ProviderCode)
	if err != nil {
		l.mu.Unlock()
		return "", err
	}
	if !ok {
		l.mu.Unlock()
		return "", revert(domain.ErrUnauthorized, ReasonProviderNotApproved)
	}

	if _, exists := l.records[params.BookingID]; exists {
		l.mu.Unlock()
		return "", revert(domain.ErrDuplicateBooking, ReasonBookingExists)
	}

	amount, err := DecodeUint256(params.EncodedAmount)
	if err != nil || amount == 0 {
		l.mu.Unlock()
		return "", revert(domain.ErrInvalidArgument, ReasonInvalidAmount)
	}

	l.nonce++
	txHash := l.txHash(params.BookingID, l.nonce)

	now := time.Now()
	l.records[params.BookingID] = &domain.BookingRecord{
		BookingID:       params.BookingID,
		UserID:          params.UserID,
		ProviderCode:    params.ProviderCode,
		ResourceID:      params.ResourceID,
		Amount:          amount,
		Status:          domain.BookingStatusPending,
		TransactionHash: txHash,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	l.mu.Unlock()

	// The creation event records who paid: the grant id when a paymaster
	// underwrote the submission, empty when the caller did.
	var grantID string
	if params.Sponsorship != nil {
		grantID = params.Sponsorship.GrantID
	}

	l.emit(ctx, Event{
		Type:           EventBookingCreated,
		BookingID:      params.BookingID.String(),
		UserID:         params.UserID,
		ResourceID:     params.ResourceID,
		Amount:         amount,
		Status:         domain.BookingStatusPending.String(),
		EncodedAuxData: params.EncodedAmount,
		SponsorGrantID: grantID,
		TxHash:         txHash,
	})

	return txHash, nil
}

// Get reads a record by identifier. Returns a copy; the ledger keeps the
// only durable one.
func (l *Ledger) Get(bookingID domain.BookingID) (*domain.BookingRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[bookingID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, bookingID)
	}
	copied := *rec
	return &copied, nil
}

// Confirm moves a pending booking to confirmed.
func (l *Ledger) Confirm(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error) {
	return l.transition(ctx, bookingID, domain.BookingStatusConfirmed, EventBookingConfirmed)
}

// Cancel moves a pending booking to cancelled.
func (l *Ledger) Cancel(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error) {
	return l.transition(ctx, bookingID, domain.BookingStatusCancelled, EventBookingCancelled)
}

// Dispute moves a pending booking to disputed.
func (l *Ledger) Dispute(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error) {
	return l.transition(ctx, bookingID, domain.BookingStatusDisputed, EventBookingDisputed)
}

// Resolve moves a disputed booking to resolved.
func (l *Ledger) Resolve(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error) {
	return l.transition(ctx, bookingID, domain.BookingStatusResolved, EventBookingResolved)
}

// legalTransitions: Pending -> Confirmed | Cancelled | Disputed,
// Disputed -> Resolved. Cancelled and Resolved are terminal. Creation is the
// only path into Pending.
func legalTransition(from, to domain.BookingStatus) bool {
	switch from {
	case domain.BookingStatusPending:
		return to == domain.BookingStatusConfirmed ||
			to == domain.BookingStatusCancelled ||
			to == domain.BookingStatusDisputed
	case domain.BookingStatusDisputed:
		return to == domain.BookingStatusResolved
	default:
		return false
	}
}

func (l *Ledger) transition(ctx context.Context, bookingID domain.BookingID, to domain.BookingStatus, eventType string) (*domain.BookingRecord, error) {
	l.mu.Lock()

	rec, ok := l.records[bookingID]
	if !ok {
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, bookingID)
	}
	if !legalTransition(rec.Status, to) {
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, rec.Status, to)
	}

	rec.Status = to
	rec.UpdatedAt = time.Now()
	copied := *rec
	l.mu.Unlock()

	l.emit(ctx, Event{
		Type:       eventType,
		BookingID:  copied.BookingID.String(),
		UserID:     copied.UserID,
		ResourceID: copied.ResourceID,
		Amount:     copied.Amount,
		Status:     copied.Status.String(),
		TxHash:     copied.TransactionHash,
	})

	return &copied, nil
}

func (l *Ledger) emit(ctx context.Context, event Event) {
	if l.notifier == nil {
		return
	}
	if err := l.notifier.Notify(ctx, event); err != nil {
		log.Printf("WARNING: failed to notify %s for booking %s: %v", event.Type, event.BookingID, err)
	}
}

func (l *Ledger) txHash(bookingID domain.BookingID, nonce uint64) string {
	var buf [24]byte
	copy(buf[:16], bookingID[:])
	binary.BigEndian.PutUint64(buf[16:], nonce)
	sum := sha256.Sum256(buf[:])
	return "0x" + hex.EncodeToString(sum[:])
}
