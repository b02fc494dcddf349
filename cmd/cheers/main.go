package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	_ "cheers/docs"
	"cheers/internal"
	"cheers/internal/config"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title           Cheers API
// @version         1.0
// @description     Drink logging with a swipeable card carousel and consumption statistics
// @BasePath        /

var (
	port    string
	envFile string
)

func main() {
	flag.StringVar(&port, "port", "", "HTTP server port (e.g. ':8080'), overrides CHEERS_ADDR")
	flag.StringVar(&envFile, "env", config.DefaultEnvFile, "dotenv file to load before reading the environment")
	flag.Parse()

	log.SetTimeFormat(time.Stamp)
	log.SetReportCaller(true)

	cfg, err := config.Load(envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.SetLevel(cfg.Level())
	if port != "" {
		cfg.Addr = port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := cheers.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", server.SetupRoutes())
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	httpServer := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Shutdown failed", "err", err)
		}
	}()

	log.Info("Server starting on", "addr", cfg.Addr, "backend", cfg.Backend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
	log.Info("Server stopped")
}
