package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"cardmirror/internal/auth"
	"cardmirror/internal/catalog"
	"cardmirror/internal/imagecache"
	"cardmirror/internal/ingest"
	"cardmirror/internal/statushub"
	"cardmirror/internal/upstream"
	"cardmirror/pkg/database"
	"cardmirror/pkg/models"
	"cardmirror/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := utils.LoadServerConfig()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	// pins the shared-memory store for the process lifetime
	keepAlive, err := database.KeepAlive(context.Background(), db)
	if err != nil {
		log.Fatalf("keep-alive conn failed: %v", err)
	}
	defer keepAlive.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	hub := statushub.NewHub()
	tracker := ingest.NewTracker(func(st models.Status) { hub.BroadcastJSON(st) })

	repo := catalog.NewRepo(db)
	source := upstream.NewClient(cfg.UpstreamURL, cfg.FetchTimeout)
	pipeline := ingest.NewPipeline(repo, source, tracker, cfg.ChunkSize)
	images := imagecache.New(repo, cfg.FetchTimeout)

	router := gin.Default()

	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	handler := catalog.NewHandler(repo, tracker, images)
	handler.RegisterRoutes(router)

	router.GET("/ws", statushub.Handler(hub, func() any { return tracker.Snapshot() }))

	tokens := auth.TokenService{
		Secret:   []byte(cfg.AdminSecret),
		Issuer:   cfg.AdminIssuer,
		Duration: 24 * time.Hour,
	}
	admin := router.Group("/admin")
	admin.Use(auth.Middleware(tokens))
	admin.POST("/refresh", ingest.RefreshHandler(pipeline))

	go func() {
		if err := pipeline.Run(context.Background()); err != nil {
			log.Printf("initial ingestion failed: %v", err)
		}
	}()

	refreshDone := make(chan struct{})
	if cfg.RefreshInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.RefreshInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := pipeline.Refresh(context.Background()); err != nil {
						log.Printf("periodic refresh failed: %v", err)
					}
				case <-refreshDone:
					return
				}
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	close(refreshDone)

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}
