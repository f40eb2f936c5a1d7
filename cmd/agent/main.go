package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightagent/config"
	"github.com/Domenick1991/flightagent/internal/agent"
	"github.com/Domenick1991/flightagent/internal/cache"
	"github.com/Domenick1991/flightagent/internal/domain"
	"github.com/Domenick1991/flightagent/internal/kafka"
	"github.com/Domenick1991/flightagent/internal/llm"
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
	if cfg.Agent.APIKey == "" {
		log.Fatal("model api key is not set (GOOGLE_API_KEY)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := llm.NewClient(cfg.Agent.APIKey)

	// "list-models" prints the models the key can use, so a rejected model in
	// the config's fallback list can be swapped for a valid one.
	if len(os.Args) > 1 && os.Args[1] == "list-models" {
		if err := listModels(ctx, client); err != nil {
			log.Fatalf("list models: %v", err)
		}
		return
	}

	if cfg.Provider.APIKey == "" {
		log.Fatal("provider api key is not set (SERPAPI_KEY)")
	}

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

	cursor := llm.NewModelCursor(cfg.Agent.Models)

	chat := agent.New(client, cursor, searchService,
		agent.WithRankOptions(domain.RankOptions{
			MaxPicks:     cfg.Ranking.MaxPicks,
			TolerancePct: cfg.Ranking.TolerancePct,
		}),
		agent.WithMaxRetryWait(time.Duration(cfg.Agent.MaxRetryWaitSeconds)*time.Second),
	)

	if err := chat.Run(ctx); err != nil {
		log.Fatalf("agent error: %v", err)
	}
}

func listModels(ctx context.Context, client *llm.Client) error {
	models, err := client.ListModels(ctx)
	if err != nil {
		return err
	}
	for _, m := range models {
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" {
				fmt.Printf("%s (%s)\n", m.Name, m.DisplayName)
				break
			}
		}
	}
	return nil
}
