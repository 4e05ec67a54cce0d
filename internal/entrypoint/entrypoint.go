package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ewen-lbh/loca7/internal/auth"
	"github.com/ewen-lbh/loca7/internal/config"
	"github.com/ewen-lbh/loca7/internal/database"
	"github.com/ewen-lbh/loca7/internal/database/appartments"
	"github.com/ewen-lbh/loca7/internal/database/users"
	http_controllers "github.com/ewen-lbh/loca7/internal/http"
	"github.com/ewen-lbh/loca7/internal/mailer"
	"github.com/ewen-lbh/loca7/internal/scheduler"
	"github.com/ewen-lbh/loca7/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM. SIGKILL cannot be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Loca7 v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	usersRepo := users.NewRepository(db.DB)
	appartmentsRepo := appartments.NewRepository(db.DB)

	// Session store shares the application database
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	// CSRF secret: configured value, or a fresh one per process
	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	// Task queue carries outgoing mail so SMTP hiccups never block requests
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		sender := mailer.New(cfg.Mail)
		taskClient.Register(
			tasks.NewSendMailQueue(sender),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	} else {
		log.Printf("Task queue disabled, notification mail will not be sent")
	}

	staleSweeper := scheduler.NewStaleListingsScheduler(appartmentsRepo, taskClient, cfg.StaleListings, cfg.Global.PublicURL)
	if err := staleSweeper.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start stale listings scheduler: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:      db,
		Users:         usersRepo,
		Appartments:   appartmentsRepo,
		Sessions:      sessionManager,
		CSRFSecret:    csrfSecret,
		SecureCookies: cfg.Auth.SecureCookies,
		BcryptCost:    cfg.Auth.BcryptCost,
		TokenExpiry:   cfg.Auth.TokenExpiry,
		TaskClient:    taskClient,
		PublicURL:     cfg.Global.PublicURL,
		PhotosDir:     cfg.Photos.Dir,
		Version:       version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		staleSweeper.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
