package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/elysium-stays/bookingledger/api"
	"github.com/elysium-stays/bookingledger/config"
	"github.com/elysium-stays/bookingledger/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, bookingSvc booking.BookingUseCase, sponsor api.SponsorAdmin) error {
	router := gin.Default()
	api.NewBookingHandler(bookingSvc).Register(router)
	api.NewPaymasterHandler(sponsor).Register(router)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
