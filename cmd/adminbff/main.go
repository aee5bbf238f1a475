package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/access"
	"github.com/arsipak/admin-bff-go/internal/config"
	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/handler"
	"github.com/arsipak/admin-bff-go/internal/infra/arsip"
	"github.com/arsipak/admin-bff-go/internal/infra/cache"
	"github.com/arsipak/admin-bff-go/internal/infra/observability"
	"github.com/arsipak/admin-bff-go/internal/infra/resilience"
	"github.com/arsipak/admin-bff-go/internal/region"
	"github.com/arsipak/admin-bff-go/internal/service"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("arsip_api_url", cfg.ArsipAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("region_cache_ttl", cfg.RegionCacheTTL),
		zap.Duration("picker_session_ttl", cfg.PickerSessionTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(context.Background(), "arsipak-admin-bff", cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Caches ---
	levelCache := cache.New[[]domain.Region](cfg.RegionCacheTTL)
	pathCache := cache.New[domain.RegionPath](cfg.RegionCacheTTL)
	pickerSessions := cache.New[*region.Selector](cfg.PickerSessionTTL)
	userCache := cache.New[*domain.User](cfg.RecordCacheTTL)
	religionCache := cache.New[[]domain.Religion](cfg.RegionCacheTTL)
	educationCache := cache.New[[]domain.EducationLevel](cfg.RegionCacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("arsip-api")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Upstream client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	arsipClient := arsip.NewClient(httpClient, cfg.ArsipAPIURL, cb, resilienceCfg, bulkhead, logger, metrics)

	// --- Session store ---
	var store access.Store
	if cfg.SessionStorePath != "" {
		fileStore, err := access.NewFileStore(cfg.SessionStorePath)
		if err != nil {
			logger.Fatal("failed to open session store", zap.String("path", cfg.SessionStorePath), zap.Error(err))
		}
		store = fileStore
		logger.Info("using file session store", zap.String("path", cfg.SessionStorePath))
	} else {
		store = access.NewMemoryStore()
		logger.Info("using in-memory session store, logins will not survive restarts")
	}

	// --- Access gate ---
	tokens := access.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAccessTTL)
	gate := access.NewGate(arsipClient, store, tokens, userCache, logger)

	// --- Region services ---
	regionSvc := region.NewService(arsipClient, levelCache, pathCache, logger, metrics)
	pickerMgr := region.NewManager(regionSvc, pickerSessions, logger, metrics)

	// --- Record services ---
	cols := service.Collections{
		Divisions:       arsip.NewCollection[domain.Division](arsipClient, "/divisions/", "division"),
		Roles:           arsip.NewCollection[domain.Role](arsipClient, "/roles/", "role"),
		Users:           arsip.NewCollection[domain.User](arsipClient, "/users/", "user"),
		Religions:       arsip.NewCollection[domain.Religion](arsipClient, "/religions/", "religion"),
		EducationLevels: arsip.NewCollection[domain.EducationLevel](arsipClient, "/education-levels/", "education level"),
		StudyPrograms:   arsip.NewCollection[domain.StudyProgram](arsipClient, "/prodis/", "study program"),
		Concentrations:  arsip.NewCollection[domain.Concentration](arsipClient, "/konsentrasi-utama/", "concentration"),
		Students:        arsip.NewCollection[domain.Student](arsipClient, "/mahasiswa/", "student"),
		Lecturers:       arsip.NewCollection[domain.Lecturer](arsipClient, "/dosen/", "lecturer"),
		Supervisions:    arsip.NewCollection[domain.Supervision](arsipClient, "/bimbingan/", "supervision"),
	}
	recordsSvc := service.NewRecords(cols, arsipClient, religionCache, educationCache, logger, metrics)
	proposalSvc := service.NewProposals(arsipClient, logger)
	dashboardSvc := service.NewDashboard(cols, arsipClient, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Logger:    logger,
		Metrics:   metrics,
		Gate:      gate,
		Auth:      arsipClient,
		Regions:   regionSvc,
		Picker:    pickerMgr,
		Records:   recordsSvc,
		Proposals: proposalSvc,
		Dashboard: dashboardSvc,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
