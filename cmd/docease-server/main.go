package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/docease/docease/internal/config"
	"github.com/docease/docease/internal/domain/booking"
	"github.com/docease/docease/internal/domain/directory"
	"github.com/docease/docease/internal/domain/identity"
	"github.com/docease/docease/internal/platform/auth"
	"github.com/docease/docease/internal/platform/db"
	"github.com/docease/docease/internal/platform/middleware"
)

// DoctorRegistrarAdapter adapts the directory service to the
// identity.DoctorRegistrar interface, avoiding circular imports
// between the identity and directory packages.
type DoctorRegistrarAdapter struct {
	svc *directory.Service
}

func (a *DoctorRegistrarAdapter) RegisterDoctor(ctx context.Context, userID uuid.UUID, specialization string, experience int, education string, consultationFee float64) error {
	_, err := a.svc.CreateProfile(ctx, userID, directory.ProfileInput{
		Specialization:  specialization,
		Experience:      experience,
		Education:       education,
		ConsultationFee: consultationFee,
	})
	return err
}

// DoctorDirectoryAdapter adapts the directory service to the
// booking.DoctorDirectory interface.
type DoctorDirectoryAdapter struct {
	svc *directory.Service
}

func (a *DoctorDirectoryAdapter) GetDoctor(ctx context.Context, id uuid.UUID) (*booking.DoctorInfo, error) {
	d, err := a.svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDoctorInfo(d), nil
}

func (a *DoctorDirectoryAdapter) GetDoctorByUser(ctx context.Context, userID uuid.UUID) (*booking.DoctorInfo, error) {
	d, err := a.svc.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDoctorInfo(d), nil
}

func toDoctorInfo(d *directory.Doctor) *booking.DoctorInfo {
	info := &booking.DoctorInfo{
		ID:             d.ID,
		UserID:         d.UserID,
		Specialization: d.Specialization,
	}
	if d.User != nil {
		info.Name = d.User.Name
	}
	return info
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "docease-server",
		Short: "Doctor appointment booking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the booking API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Auth
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenLifetime())
	authMW := auth.Middleware(tokens)

	api := e.Group("/api")

	// Directory domain
	doctorRepo := directory.NewRepoPG(pool)
	directorySvc := directory.NewService(doctorRepo)
	directoryHandler := directory.NewHandler(directorySvc)
	directoryHandler.RegisterRoutes(api, authMW)

	// Identity domain
	userRepo := identity.NewRepoPG(pool)
	identitySvc := identity.NewService(userRepo)
	identityHandler := identity.NewHandler(identitySvc, tokens, &DoctorRegistrarAdapter{svc: directorySvc})
	identityHandler.RegisterRoutes(api, authMW)

	// Booking domain
	apptRepo := booking.NewRepoPG(pool)
	bookingSvc := booking.NewService(apptRepo, &DoctorDirectoryAdapter{svc: directorySvc})
	bookingHandler := booking.NewHandler(bookingSvc)
	bookingHandler.RegisterRoutes(api, authMW)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
