package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elysium-stays/bookingledger/config"
	"github.com/elysium-stays/bookingledger/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	bookingTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, bookingTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		bookingTTL: bookingTTL,
	}
}

type bookingPayload struct {
	BookingID       string    `json:"booking_id"`
	UserID          string    `json:"user_id"`
	ProviderCode    string    `json:"provider_code"`
	ResourceID      string    `json:"resource_id"`
	Amount          uint64    `json:"amount"`
	Status          uint8     `json:"status"`
	TransactionHash string    `json:"transaction_hash"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GetBooking returns the cached record, or nil on a cache miss.
func (c *RedisCache) GetBooking(ctx context.Context, bookingID string) (*domain.BookingRecord, error) {
	data, err := c.client.Get(ctx, bookingKey(bookingID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var payload bookingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	id, err := domain.ParseBookingID(payload.BookingID)
	if err != nil {
		return nil, err
	}

	return &domain.BookingRecord{
		BookingID:       id,
		UserID:          payload.UserID,
		ProviderCode:    payload.ProviderCode,
		ResourceID:      payload.ResourceID,
		Amount:          payload.Amount,
		Status:          domain.BookingStatus(payload.Status),
		TransactionHash: payload.TransactionHash,
		CreatedAt:       payload.CreatedAt,
		UpdatedAt:       payload.UpdatedAt,
	}, nil
}

func (c *RedisCache) SetBooking(ctx context.Context, record *domain.BookingRecord) error {
	payload, err := json.Marshal(bookingPayload{
		BookingID:       record.BookingID.String(),
		UserID:          record.UserID,
		ProviderCode:    record.ProviderCode,
		ResourceID:      record.ResourceID,
		Amount:          record.Amount,
		Status:          uint8(record.Status),
		TransactionHash: record.TransactionHash,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, bookingKey(record.BookingID.String()), payload, c.bookingTTL).Err()
}

func bookingKey(bookingID string) string {
	return fmt.Sprintf("cache:booking:%s", bookingID)
}
