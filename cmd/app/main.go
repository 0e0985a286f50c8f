package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krylovda/pitchbook/config"
	"github.com/krylovda/pitchbook/internal/bootstrap"
	"github.com/krylovda/pitchbook/internal/cache"
	"github.com/krylovda/pitchbook/internal/kafka"
	"github.com/krylovda/pitchbook/internal/repository"
	"github.com/krylovda/pitchbook/internal/service/booking"
	"github.com/krylovda/pitchbook/internal/service/pitches"
	"github.com/krylovda/pitchbook/internal/service/wallet"
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

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.PitchCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	userRepo := repository.NewUserRepository(pool)
	pitchRepo := repository.NewPitchRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	walletRepo := repository.NewWalletRepository(pool)

	pitchService := pitches.NewPitchService(pitchRepo, bookingRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		pitchRepo,
		userRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		time.Duration(cfg.Booking.PendingTTLMinutes)*time.Minute,
	)
	walletService := wallet.NewWalletService(
		walletRepo,
		producer,
		cfg.Kafka.WalletTopic,
		cfg.Wallet.RevenueShare,
	)

	if err := bootstrap.Run(ctx, cfg, pitchService, bookingService, walletService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
