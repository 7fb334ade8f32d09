package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vadimk/energy_trading_desk/internal/domain"
	"github.com/vadimk/energy_trading_desk/internal/infrastructure/logger"
	"github.com/vadimk/energy_trading_desk/internal/infrastructure/marketdata"
	"github.com/vadimk/energy_trading_desk/internal/infrastructure/storage"
	"github.com/vadimk/energy_trading_desk/internal/task"
	"github.com/vadimk/energy_trading_desk/internal/usecase"
	"github.com/vadimk/energy_trading_desk/internal/web"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Market struct {
		APIKey   string `yaml:"api_key"`
		BaseURL  string `yaml:"base_url"`
		Location string `yaml:"location"`
	} `yaml:"market"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Broadcast struct {
		IntervalMs int `yaml:"interval_ms"`
	} `yaml:"broadcast"`
	Expiry struct {
		IntervalMs int `yaml:"interval_ms"`
	} `yaml:"expiry"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	// 1. Load environment and config
	_ = godotenv.Load()

	configPath := "config/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if key := os.Getenv("GRIDSTATUS_API_KEY"); key != "" {
		cfg.Market.APIKey = key
	}

	// 2. Init logger
	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init storage
	dbPath := cfg.Storage.Path
	if dbPath == "" {
		dbPath = "desk.db"
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	// 4. Init price feeds
	mock := marketdata.NewMockFeed(cfg.Market.Location, time.Now().UnixNano())
	var feed domain.PriceFeed = mock
	if cfg.Market.APIKey != "" {
		feed = marketdata.NewGridStatusClient(cfg.Market.APIKey, cfg.Market.BaseURL, cfg.Market.Location, log)
	} else {
		log.Warn("No Grid Status API key configured, serving mock market data")
	}
	marketService := usecase.NewMarketService(feed, mock, log)

	// 5. Init trading engine
	engine := usecase.NewTradingEngine(usecase.AcceptAllRule{}, store, log)

	// 6. Init websocket hub and background tasks
	hub := web.NewHub(log)

	broadcastInterval := time.Duration(cfg.Broadcast.IntervalMs) * time.Millisecond
	if broadcastInterval <= 0 {
		broadcastInterval = 5 * time.Minute
	}
	broadcaster := task.NewRecurring("price-broadcast", broadcastInterval, func(ctx context.Context) error {
		obs, ok := marketService.LatestRTPrice(ctx)
		if !ok {
			return nil
		}
		hub.Broadcast(web.PriceUpdate{
			Type: "price_update",
			Data: web.PriceUpdateData{
				Timestamp: obs.Timestamp,
				Price:     obs.Price,
				Market:    obs.Market,
			},
		})
		return nil
	}, log)

	expiryInterval := time.Duration(cfg.Expiry.IntervalMs) * time.Millisecond
	if expiryInterval <= 0 {
		expiryInterval = time.Hour
	}
	sweeper := task.NewRecurring("position-expiry", expiryInterval, func(context.Context) error {
		engine.ExpirePositions(time.Now())
		return nil
	}, log)

	broadcaster.Start()
	sweeper.Start()

	// 7. Init web server
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	server := web.NewServer(port, engine, marketService, store, hub, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 8. Wait for shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down...")
	broadcaster.Stop()
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}
}
