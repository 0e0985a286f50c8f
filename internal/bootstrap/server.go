package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krylovda/pitchbook/api"
	"github.com/krylovda/pitchbook/config"
	"github.com/krylovda/pitchbook/internal/service/booking"
	"github.com/krylovda/pitchbook/internal/service/pitches"
	"github.com/krylovda/pitchbook/internal/service/wallet"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, pitchSvc pitches.PitchUseCase, bookingSvc booking.BookingUseCase, walletSvc wallet.WalletUseCase) error {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	api.NewPitchHandler(pitchSvc).Register(router.Group("/pitches"))
	api.NewBookingHandler(bookingSvc).Register(router.Group("/bookings"))
	api.NewWalletHandler(walletSvc).Register(router.Group("/wallets"))
	api.NewSettlementHandler(walletSvc).Register(router.Group("/settlements"))

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/openapi.json"))))
	}

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
