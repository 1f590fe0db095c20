package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/elysium-stays/bookingledger/internal/domain"
	"github.com/elysium-stays/bookingledger/internal/ledger"
	"github.com/elysium-stays/bookingledger/internal/paymaster"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.BookingRecord, error)
	GetBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error)
	ConfirmBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error)
	CancelBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error)
	DisputeBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error)
	ResolveBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error)
}

// Ledger is the submission and read boundary the orchestrator talks to.
type Ledger interface {
	EstimateCost(params ledger.CreateParams) uint64
	SubmitCreate(ctx context.Context, params ledger.CreateParams) (string, error)
	Get(bookingID domain.BookingID) (*domain.BookingRecord, error)
	Confirm(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error)
	Cancel(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error)
	Dispute(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error)
	Resolve(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error)
}

// Sponsor underwrites execution costs.
type Sponsor interface {
	AvailableBalance() uint64
	Authorize(cost uint64, req paymaster.RequestContext) (*paymaster.Grant, error)
	Settle(grant *paymaster.Grant, actualCost uint64) error
	Release(grant *paymaster.Grant) error
}

type Cache interface {
	GetBooking(ctx context.Context, bookingID string) (*domain.BookingRecord, error)
	SetBooking(ctx context.Context, record *domain.BookingRecord) error
}

type BookingService struct {
	ledger             Ledger
	sponsor            Sponsor
	cache              Cache
	requireSponsorship bool
}

type CreateBookingInput struct {
	UserID       string `json:"userId"`
	ProviderCode string `json:"authorizedProviderCode"`
	ResourceID   string `json:"resourceId"`
	Amount       uint64 `json:"bookingAmount"`
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

// WithUnsponsoredFallback lets a creation go through unsponsored when the
// paymaster cannot cover the execution cost, instead of aborting.
func WithUnsponsoredFallback() BookingServiceOption {
	return func(s *BookingService) {
		s.requireSponsorship = false
	}
}

func NewBookingService(l Ledger, sponsor Sponsor, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		ledger:             l,
		sponsor:            sponsor,
		requireSponsorship: true,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking validates the request, generates a fresh booking identifier,
// obtains a sponsorship grant for the estimated execution cost, and submits
// the creation with the grant attached. The returned record mirrors what the
// ledger accepted; on failure no partial record is returned.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.BookingRecord, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}
	if input.ProviderCode == "" {
		return nil, fmt.Errorf("%w: provider code is required", domain.ErrInvalidArgument)
	}
	if input.ResourceID == "" {
		return nil, fmt.Errorf("%w: resource id is required", domain.ErrInvalidArgument)
	}
	if input.Amount == 0 {
		return nil, fmt.Errorf("%w: booking amount must be positive", domain.ErrInvalidArgument)
	}

	// The identifier is generated locally so the caller knows it before the
	// submission is confirmed. A timed-out call can follow up with GetBooking
	// on this id instead of retrying under a new one.
	bookingID := domain.NewBookingID()

	params := ledger.CreateParams{
		BookingID:     bookingID,
		UserID:        input.UserID,
		ProviderCode:  input.ProviderCode,
		ResourceID:    input.ResourceID,
		EncodedAmount: ledger.EncodeUint256(input.Amount),
	}

	// Estimated against the exact parameters that get submitted below.
	cost := s.ledger.EstimateCost(params)

	grant, err := s.requestSponsorship(cost, bookingID, input.UserID)
	if err != nil {
		return nil, err
	}
	if grant != nil {
		params.Sponsorship = &ledger.SponsorshipParams{GrantID: grant.ID}
	}

	txHash, err := s.ledger.SubmitCreate(ctx, params)
	if err != nil {
		// The grant covered exactly this attempt; any retry starts over
		// with a fresh sponsorship decision.
		if grant != nil {
			if relErr := s.sponsor.Release(grant); relErr != nil {
				log.Printf("WARNING: release grant %s: %v", grant.ID, relErr)
			}
		}
		var rev *ledger.RevertError
		if errors.As(err, &rev) {
			return nil, fmt.Errorf("create booking: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}

	if grant != nil {
		if err := s.sponsor.Settle(grant, cost); err != nil {
			log.Printf("WARNING: settle grant %s: %v", grant.ID, err)
		}
	}

	now := time.Now()
	record := &domain.BookingRecord{
		BookingID:       bookingID,
		UserID:          input.UserID,
		ProviderCode:    input.ProviderCode,
		ResourceID:      input.ResourceID,
		Amount:          input.Amount,
		Status:          domain.BookingStatusPending,
		TransactionHash: txHash,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if s.cache != nil {
		if err := s.cache.SetBooking(ctx, record); err != nil {
			log.Printf("WARNING: cache booking %s: %v", bookingID, err)
		}
	}

	return record, nil
}

func (s *BookingService) requestSponsorship(cost uint64, bookingID domain.BookingID, userID string) (*paymaster.Grant, error) {
	if balance := s.sponsor.AvailableBalance(); balance < cost {
		if s.requireSponsorship {
			return nil, fmt.Errorf("%w: execution cost %d exceeds paymaster balance %d", domain.ErrInsufficientSponsorFunds, cost, balance)
		}
		log.Printf("WARNING: paymaster balance %d below execution cost %d, submitting unsponsored", balance, cost)
		return nil, nil
	}

	grant, err := s.sponsor.Authorize(cost, paymaster.RequestContext{BookingID: bookingID, UserID: userID})
	if err != nil {
		if s.requireSponsorship {
			return nil, fmt.Errorf("request sponsorship: %w", err)
		}
		log.Printf("WARNING: sponsorship rejected (%v), submitting unsponsored", err)
		return nil, nil
	}
	return grant, nil
}

// GetBooking reads a record back from the ledger, going through the cache
// when one is configured.
func (s *BookingService) GetBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error) {
	if s.cache != nil {
		cached, err := s.cache.GetBooking(ctx, bookingID.String())
		if err != nil {
			log.Printf("WARNING: cache read %s: %v", bookingID, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	record, err := s.ledger.Get(bookingID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetBooking(ctx, record); err != nil {
			log.Printf("WARNING: cache booking %s: %v", bookingID, err)
		}
	}
	return record, nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error) {
	return s.transition(ctx, bookingID, s.ledger.Confirm)
}

func (s *BookingService) CancelBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error) {
	return s.transition(ctx, bookingID, s.ledger.Cancel)
}

func (s *BookingService) DisputeBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error) {
	return s.transition(ctx, bookingID, s.ledger.Dispute)
}

func (s *BookingService) ResolveBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error) {
	return s.transition(ctx, bookingID, s.ledger.Resolve)
}

func (s *BookingService) transition(ctx context.Context, bookingID domain.BookingID, op func(context.Context, domain.BookingID) (*domain.BookingRecord, error)) (*domain.BookingRecord, error) {
	record, err := op(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetBooking(ctx, record); err != nil {
			log.Printf("WARNING: cache booking %s: %v", bookingID, err)
		}
	}
	return record, nil
}

var _ BookingUseCase = (*BookingService)(nil)
