package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elysium-stays/bookingledger/config"
	"github.com/elysium-stays/bookingledger/internal/domain"
	"github.com/elysium-stays/bookingledger/internal/kafka"
	"github.com/elysium-stays/bookingledger/internal/ledger"
	"github.com/elysium-stays/bookingledger/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The worker consumes booking events and maintains the postgres mirror
// index, so reads and reporting do not hit the ledger.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	indexRepo := repository.NewBookingIndexRepository(pool)

	consumer := kafka.NewEventConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic)
	defer consumer.Close()

	err = consumer.Consume(ctx, func(ctx context.Context, event ledger.Event) error {
		if err := indexBooking(ctx, indexRepo, event); err != nil {
			log.Printf("index booking %s: %v", event.BookingID, err)
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("consumer stopped: %v", err)
	}
}

func indexBooking(ctx context.Context, repo repository.BookingIndexRepository, event ledger.Event) error {
	bookingID, err := domain.ParseBookingID(event.BookingID)
	if err != nil {
		return err
	}

	now := time.Now()
	record := &domain.BookingRecord{
		BookingID:       bookingID,
		UserID:          event.UserID,
		ResourceID:      event.ResourceID,
		Amount:          event.Amount,
		Status:          statusFromEvent(event),
		TransactionHash: event.TxHash,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return repo.Upsert(ctx, record)
}

func statusFromEvent(event ledger.Event) domain.BookingStatus {
	switch event.Type {
	case ledger.EventBookingConfirmed:
		return domain.BookingStatusConfirmed
	case ledger.EventBookingCancelled:
		return domain.BookingStatusCancelled
	case ledger.EventBookingDisputed:
		return domain.BookingStatusDisputed
	case ledger.EventBookingResolved:
		return domain.BookingStatusResolved
	default:
		return domain.BookingStatusPending
	}
}
