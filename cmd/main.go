package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tiffin/internal/api"
	"tiffin/internal/config"
	"tiffin/internal/database"
	"tiffin/internal/monitoring"
	"tiffin/internal/orchestrator"
	"tiffin/internal/rl"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Metrics.Port = *metricsPort
	}

	model, err := initializeLLM(cfg)
	if err != nil {
		log.Printf("Language model unavailable, agents will use fallbacks: %v", err)
	}

	db, err := database.InitDB(cfg.Database.Dialect, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	database.SeedDefaultData(db)
	store := database.NewStore(db)

	params := rl.Hyperparameters{
		Alpha:   cfg.RL.Alpha,
		Gamma:   cfg.RL.Gamma,
		Epsilon: cfg.RL.Epsilon,
	}
	engine := rl.NewEngine(params, cfg.RL.StatePath, nil)
	engine.LoadState()

	metrics := monitoring.NewMetricsCollector()
	monitor := monitoring.NewMonitor()

	orc := orchestrator.New(store, engine, model, metrics, monitor)
	if err := orc.SeedMenuVectors(); err != nil {
		log.Printf("Vector seeding failed, semantic search disabled: %v", err)
	}

	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, metrics)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewServer(orc, monitor).Router,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}

		// Learned state survives restarts.
		engine.SaveState()
	}()

	log.Printf("Starting API server on port %d", cfg.Server.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
	<-done
}

func initializeLLM(cfg *config.Config) (llms.Model, error) {
	switch cfg.LLM.Provider {
	case "ollama":
		return ollama.New(
			ollama.WithModel(cfg.LLM.Model),
			ollama.WithServerURL(cfg.LLM.BaseURL),
		)
	case "openai":
		return openai.New(
			openai.WithModel(cfg.LLM.Model),
			openai.WithToken(cfg.LLM.APIKey),
		)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func startMetricsServer(port int, path string, metrics *monitoring.MetricsCollector) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	log.Printf("Starting metrics server on port %d", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
		log.Printf("Metrics server error: %v", err)
	}
}
