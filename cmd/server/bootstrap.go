package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/agentauth/internal/api"
	"github.com/charlesng35/agentauth/internal/app"
	"github.com/charlesng35/agentauth/internal/app/maintenance"
	"github.com/charlesng35/agentauth/internal/auth"
	"github.com/charlesng35/agentauth/internal/database"
	"github.com/charlesng35/agentauth/internal/monitoring"
	"github.com/charlesng35/agentauth/internal/playground"
	"github.com/charlesng35/agentauth/pkg/logger"
)

const maintenanceShutdownTimeout = 10 * time.Second

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	AuthSvc    *auth.Service
	Sessions   *auth.SessionStore
	Playground *playground.Service
	Cleaner    *maintenance.Cleaner
	Router     *gin.Engine
}

// bootstrapRuntime opens the database, builds services and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	stack.AuthSvc, _, stack.Sessions, err = auth.NewServiceFromDB(stack.DB, cfg.Auth.ServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise auth service: %w", err)
	}

	agentStore, err := playground.NewStore(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise playground store: %w", err)
	}
	stack.Playground, err = playground.NewService(agentStore, cfg.Playground.Agents)
	if err != nil {
		return nil, fmt.Errorf("initialise playground service: %w", err)
	}

	stack.Cleaner = maintenance.NewCleaner()
	if purge := cfg.Maintenance.SessionPurge; purge.Enabled {
		if err := stack.Cleaner.AddSessionPurge(stack.Sessions, purge.Schedule); err != nil {
			return nil, fmt.Errorf("schedule session purge: %w", err)
		}
	}
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	readiness := monitoring.NewReadiness(0)
	readiness.Register("database", monitoring.DatabaseProbe(stack.DB))

	stack.Router, err = api.NewRouter(api.Dependencies{
		Config:     cfg,
		Auth:       stack.AuthSvc,
		Playground: stack.Playground,
		Readiness:  readiness,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown stops background jobs, runs one final sweep and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil && s.Cleaner.Enabled() {
		<-s.Cleaner.Stop().Done()

		runCtx, cancel := context.WithTimeout(ctx, maintenanceShutdownTimeout)
		if err := s.Cleaner.RunOnce(runCtx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
		cancel()
	}

	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
		s.DB = nil
	}
}

func initialiseDatabase(ctx context.Context, cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Ping(ctx, db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db, cfg.Auth.SeedInvitations()); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}
