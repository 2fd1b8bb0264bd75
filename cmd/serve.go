package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/reservation-app/database"
	"github.com/yeremiapane/reservation-app/events"
	"github.com/yeremiapane/reservation-app/middlewares"
	"github.com/yeremiapane/reservation-app/router"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
)

func newServeCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeDB(db)

			if cfg.GinMode == gin.ReleaseMode {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if seed {
				if _, err := database.SeedRestaurants(db); err != nil {
					return err
				}
			}
			if cfg.AdminPassword != "" {
				created, err := database.EnsureAdmin(db, cfg.AdminName, cfg.AdminPassword, cfg.AdminEmail)
				if err != nil {
					return err
				}
				if created {
					utils.InfoLogger.Infof("Default admin %q created", cfg.AdminName)
				}
			}

			var blacklist utils.TokenBlacklist
			memory := utils.NewMemoryBlacklist()
			if cfg.RedisURL != "" {
				client, err := utils.NewRedisClient(ctx, cfg.RedisURL)
				if err != nil {
					return err
				}
				defer client.Close()
				blacklist = utils.NewRedisBlacklist(client)
				utils.InfoLogger.Info("Token revocations stored in redis")
			} else {
				blacklist = memory
			}

			hub := events.NewHub()
			defer hub.Close()

			booking := services.NewBookingService(db, services.BookingOptions{
				Window:            cfg.ReservationWindow,
				StrictTransitions: cfg.StrictStatusTransitions,
				Events:            hub,
			})
			limiter := middlewares.NewRateLimiter(cfg.RateLimitPerMinute)

			sched, err := services.NewScheduler()
			if err != nil {
				return err
			}
			if cfg.AutoCompleteInterval > 0 {
				sweeper := services.NewCompletionSweeper(db, cfg.ReservationWindow, hub)
				err := sched.Every("complete-reservations", cfg.AutoCompleteInterval, func(ctx context.Context) {
					if _, err := sweeper.Sweep(ctx); err != nil {
						utils.ErrorLogger.Errorf("Completion sweep failed: %v", err)
					}
				})
				if err != nil {
					return err
				}
			}
			err = sched.Every("housekeeping", 10*time.Minute, func(context.Context) {
				revoked := memory.Sweep()
				visitors := limiter.Cleanup()
				utils.InfoLogger.WithField("revoked_tokens", revoked).WithField("visitors", visitors).Debug("Housekeeping done")
			})
			if err != nil {
				return err
			}
			sched.Start()
			defer func() {
				if err := sched.Stop(); err != nil {
					utils.ErrorLogger.Errorf("Scheduler shutdown: %v", err)
				}
			}()

			srv := &http.Server{
				Addr: ":" + cfg.Port,
				Handler: router.SetupRouter(router.Deps{
					DB:          db,
					Config:      cfg,
					Tokens:      utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
					Blacklist:   blacklist,
					Booking:     booking,
					Hub:         hub,
					RateLimiter: limiter,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				utils.InfoLogger.Infof("Listening on port %s", cfg.Port)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			utils.InfoLogger.Info("Shutting down")
			shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
			defer stop()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "insert the sample restaurants when the database is empty")
	return cmd
}
