package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexi-backend/internal/config"
	"lexi-backend/internal/handler"
	"lexi-backend/internal/mcpserver"
	"lexi-backend/internal/provider"
	"lexi-backend/internal/service"
	"lexi-backend/internal/storage"
	"lexi-backend/internal/viewer"
	"lexi-backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var (
		configPath string
		serveMCP   bool
	)
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "path to the config file")
	flag.BoolVar(&serveMCP, "mcp", false, "serve MCP tools over stdio instead of HTTP")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if serveMCP {
		// stdout carries the MCP protocol
		err = logger.InitWithOutput(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	} else {
		err = logger.Init(cfg.Log.Level, cfg.Log.Format)
	}
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	answers, err := provider.New(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to create answer provider: %v", err)
	}

	store := storage.NewMemoryStorage()
	if err := store.Init(); err != nil {
		logger.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	opts := service.OptionsFromConfig(cfg)
	opts.Metrics = service.NewMetrics(prometheus.DefaultRegisterer)
	chatService := service.NewChatService(store, answers, viewer.NewMockViewer(), opts)
	chatService.StartCleanup(ctx)

	if serveMCP {
		logger.Infof("Serving MCP tools over stdio as %s %s", cfg.MCP.Name, cfg.MCP.Version)
		if err := mcpserver.New(chatService, cfg.MCP).ServeStdio(); err != nil {
			logger.Errorf("MCP server stopped: %v", err)
		}
		chatService.Wait()
		return
	}

	router := setupRouter(cfg, handler.NewChatHandler(chatService))

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Infof("Server listening on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	chatService.Wait()
	logger.Info("Server stopped")
}

func setupRouter(cfg *config.Config, chatHandler *handler.ChatHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(handler.RequestLogger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(handler.RateLimit(cfg.RateLimit))
	chatHandler.Register(api.Group("/chat"))

	return router
}
