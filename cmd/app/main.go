package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightagent/config"
	"github.com/Domenick1991/flightagent/internal/bootstrap"
	"github.com/Domenick1991/flightagent/internal/cache"
	"github.com/Domenick1991/flightagent/internal/kafka"
	"github.com/Domenick1991/flightagent/internal/provider/serpapi"
	"github.com/Domenick1991/flightagent/internal/ranking"
	"github.com/Domenick1991/flightagent/internal/service/search"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Provider.APIKey == "" {
		log.Fatal("provider api key is not set (SERPAPI_KEY)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providerOpts := []serpapi.Option{
		serpapi.WithCurrency(cfg.Provider.Currency),
		serpapi.WithLanguage(cfg.Provider.Language),
	}
	if cfg.Provider.BaseURL != "" {
		providerOpts = append(providerOpts, serpapi.WithBaseURL(cfg.Provider.BaseURL))
	}
	provider := serpapi.NewClient(cfg.Provider.APIKey, providerOpts...)

	engine := ranking.NewEngine(ranking.WithPriceCleaner(ranking.PriceCleaner{
		Symbol: cfg.Ranking.CurrencySymbol,
		Code:   cfg.Ranking.CurrencyCode,
	}))

	serviceOpts := []search.SearchServiceOption{
		search.WithSnapshot(cache.NewSnapshot(cfg.Cache.SnapshotPath)),
		search.WithCurrency(cfg.Ranking.CurrencyCode),
	}
	if cfg.Redis.Addr != "" {
		payloadTTL := time.Duration(cfg.Cache.PayloadTTLSeconds) * time.Second
		serviceOpts = append(serviceOpts, search.WithCache(cache.NewRedisCache(cfg.Redis, payloadTTL)))
	}
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.SearchEventsTopic != "" {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		serviceOpts = append(serviceOpts, search.WithProducer(producer, cfg.Kafka.SearchEventsTopic))
		if cfg.Kafka.NotificationsTopic != "" {
			serviceOpts = append(serviceOpts, search.WithNotificationsTopic(cfg.Kafka.NotificationsTopic))
		}
	}

	searchService := search.NewSearchService(provider, engine, serviceOpts...)

	if err := bootstrap.Run(ctx, cfg, searchService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
