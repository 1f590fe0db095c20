package domain

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BookingStatus uint8

const (
	BookingStatusPending BookingStatus = iota
	BookingStatusConfirmed
	BookingStatusCancelled
	BookingStatusDisputed
	BookingStatusResolved
)

func (s BookingStatus) String() string {
	switch s {
	case BookingStatusPending:
		return "PENDING"
	case BookingStatusConfirmed:
		return "CONFIRMED"
	case BookingStatusCancelled:
		return "CANCELLED"
	case BookingStatusDisputed:
		return "DISPUTED"
	case BookingStatusResolved:
		return "RESOLVED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
	}
}

// BookingID is the fixed-width on-ledger booking identifier.
// It is generated client-side before submission, never assigned by the ledger.
type BookingID [16]byte

// NewBookingID returns a fresh random identifier.
func NewBookingID() BookingID {
	return BookingID(uuid.New())
}

// ParseBookingID decodes the canonical 32-character lower-case hex encoding.
func ParseBookingID(s string) (BookingID, error) {
	var id BookingID
	if len(s) != hex.EncodedLen(len(id)) {
		return BookingID{}, fmt.Errorf("%w: booking id must be %d hex characters", ErrInvalidArgument, hex.EncodedLen(len(id)))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return BookingID{}, fmt.Errorf("%w: malformed booking id: %v", ErrInvalidArgument, err)
	}
	copy(id[:], raw)
	return id, nil
}

func (id BookingID) String() string {
	return hex.EncodeToString(id[:])
}

func (id BookingID) IsZero() bool {
	return id == BookingID{}
}

type BookingRecord struct {
	BookingID       BookingID
	UserID          string
	ProviderCode    string
	ResourceID      string
	Amount          uint64
	Status          BookingStatus
	TransactionHash string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
