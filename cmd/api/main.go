package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/raffle-backend/api/routes"
	"github.com/ArowuTest/raffle-backend/internal/config"
	"github.com/ArowuTest/raffle-backend/internal/handlers"
	"github.com/ArowuTest/raffle-backend/internal/lottery"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
	"github.com/ArowuTest/raffle-backend/internal/repositories/bolt"
	"github.com/ArowuTest/raffle-backend/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/raffle-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/raffle-backend/internal/services"
	"github.com/ArowuTest/raffle-backend/pkg/jwt"
	"github.com/ArowuTest/raffle-backend/pkg/payout"
	"github.com/ArowuTest/raffle-backend/pkg/redispub"
	"github.com/ArowuTest/raffle-backend/pkg/vrf"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}()

	blacklistService := services.NewBlacklistService(store.Blacklist, logger)
	payer := newPayer(cfg, blacklistService)

	vrfCfg := vrf.Config{
		KeyHash:              common.HexToHash(cfg.VRF.KeyHash),
		CallbackGasLimit:     cfg.VRF.CallbackGasLimit,
		RequestConfirmations: cfg.VRF.RequestConfirmations,
		NumWords:             cfg.VRF.NumWords,
	}
	var (
		coordinator lottery.Coordinator
		mock        *vrf.MockCoordinator
	)
	switch cfg.VRF.Mode {
	case "http":
		coordinator = vrf.NewHTTPCoordinator(cfg.VRF.URL, cfg.VRF.CallbackURL, vrfCfg, cfg.VRF.Timeout)
	default:
		mock = vrf.NewMockCoordinator(vrfCfg, vrf.WithAutoFulfill(cfg.VRF.AutoFulfillDelay), vrf.WithLogger(logger))
		coordinator = mock
	}

	fee, err := cfg.Lottery.EntranceFee()
	if err != nil {
		return err
	}
	machine, err := lottery.New(lottery.Config{EntranceFee: fee, Interval: cfg.Lottery.Interval}, coordinator, payer)
	if err != nil {
		return err
	}

	var publishers []services.Publisher
	if cfg.Redis.Enabled {
		publisher, err := redispub.Connect(ctx, redispub.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Channel:  cfg.Redis.Channel,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer publisher.Close()
		publishers = append(publishers, publisher)
		logger.Info("Publishing notifications to redis", "addr", cfg.Redis.Addr, "channel", publisher.Channel())
	}
	notificationService := services.NewNotificationService(store.Notifications, logger, publishers...)
	defer notificationService.Close()

	lotteryService := services.NewLotteryService(machine, store.Lottery, store.Rounds, notificationService, logger)
	if err := lotteryService.Start(ctx); err != nil {
		return fmt.Errorf("start lottery: %w", err)
	}
	if mock != nil {
		mock.SetConsumer(lotteryService)
		defer mock.Wait()
		if err := resumeMock(ctx, mock, lotteryService); err != nil {
			return fmt.Errorf("resume mock coordinator: %w", err)
		}
	}

	if cfg.Keeper.Enabled {
		keeper := services.NewKeeperService(lotteryService, cfg.Keeper.PollInterval, logger)
		go func() {
			if err := keeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Keeper stopped", "error", err)
			}
		}()
	}

	tokens := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	authService := services.NewAuthService(tokens, cfg.Auth.OperatorPasswordHash)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(routes.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Tokens:         tokens,
		Logger:         logger,
	}, routes.HandlerDependencies{
		HealthHandler:       handlers.NewHealthHandler(lotteryService),
		AuthHandler:         handlers.NewAuthHandler(authService),
		LotteryHandler:      handlers.NewLotteryHandler(lotteryService, cfg.Auth.AllowAnonymousPlayers),
		OracleHandler:       handlers.NewOracleHandler(lotteryService),
		NotificationHandler: handlers.NewNotificationHandler(notificationService),
		BlacklistHandler:    handlers.NewBlacklistHandler(blacklistService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Driver, "vrf", cfg.VRF.Mode, "payout", cfg.Payout.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	// stream handlers only return once their subscriptions close
	notificationService.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exiting")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (*repositories.Store, error) {
	switch cfg.Storage.Driver {
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return mongorepo.NewStore(connectCtx, cfg.Storage.MongoURI, cfg.Storage.MongoDatabase)
	case "bolt":
		return bolt.Open(cfg.Storage.BoltPath)
	default:
		return memory.NewStore(), nil
	}
}

func newPayer(cfg *config.Config, rejecter payout.Rejecter) lottery.Payer {
	if cfg.Payout.Mode == "http" {
		return payout.NewHTTPGateway(cfg.Payout.URL, cfg.Payout.APIKey, cfg.Payout.Timeout)
	}
	return payout.NewLedgerGateway(rejecter)
}

// resumeMock hands a fresh mock coordinator the request ids issued before a
// restart: the outstanding request is fulfilled again and new ids continue
// after the last one recorded.
func resumeMock(ctx context.Context, mock *vrf.MockCoordinator, svc *services.LotteryService) error {
	rounds, _, err := svc.Rounds(ctx, models.Page{Limit: 1})
	if err != nil {
		return err
	}
	if len(rounds) > 0 {
		mock.Observe(common.HexToHash(rounds[0].RequestID))
	}
	mock.Resume(svc.PendingRequest())
	return nil
}
