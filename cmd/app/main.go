package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elysium-stays/bookingledger/config"
	"github.com/elysium-stays/bookingledger/internal/bootstrap"
	"github.com/elysium-stays/bookingledger/internal/cache"
	"github.com/elysium-stays/bookingledger/internal/kafka"
	"github.com/elysium-stays/bookingledger/internal/ledger"
	"github.com/elysium-stays/bookingledger/internal/paymaster"
	"github.com/elysium-stays/bookingledger/internal/registry"
	"github.com/elysium-stays/bookingledger/internal/service/booking"
)

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

	reg := registry.New()
	for _, userID := range cfg.Registry.AuthorizedUsers {
		if err := reg.AuthorizeUser(userID); err != nil {
			log.Fatalf("authorize user %q: %v", userID, err)
		}
	}
	for _, code := range cfg.Registry.ApprovedProviders {
		if err := reg.ApproveProvider(code); err != nil {
			log.Fatalf("approve provider %q: %v", code, err)
		}
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	notifier := kafka.NewEventNotifier(producer, cfg.Kafka.BookingEventsTopic)
	recordStore := ledger.New(reg, notifier)
	sponsor := paymaster.New(cfg.Paymaster.InitialBalance)

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.CacheTTLSeconds)*time.Second)

	opts := []booking.BookingServiceOption{booking.WithCache(redisCache)}
	if !cfg.Booking.RequireSponsorship {
		opts = append(opts, booking.WithUnsponsoredFallback())
	}
	bookingService := booking.NewBookingService(recordStore, sponsor, opts...)

	if err := bootstrap.Run(ctx, cfg, bookingService, sponsor); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
