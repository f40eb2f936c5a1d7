package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/flightagent/internal/domain"
	"github.com/Domenick1991/flightagent/internal/kafka"
	"github.com/Domenick1991/flightagent/internal/ranking"
	"github.com/google/uuid"
)

// ErrNoData signals that no usable payload came back from the provider. The
// cause (provider error vs genuinely no results) is deliberately not
// distinguished: front ends render the same message either way, and the
// ranking engine never sees fetch-layer failures.
var ErrNoData = errors.New("no flight data returned from provider")

// ErrNoSnapshot signals that a replay was requested before any search stored
// a payload on disk.
var ErrNoSnapshot = errors.New("no stored search to replay")

type SearchUseCase interface {
	Search(ctx context.Context, q domain.SearchQuery, opts domain.RankOptions) (*domain.SearchResult, error)
	Replay(ctx context.Context, opts domain.RankOptions) (*domain.SearchResult, error)
}

type Provider interface {
	Search(ctx context.Context, q domain.SearchQuery) (map[string]any, error)
}

type Cache interface {
	GetPayload(ctx context.Context, q domain.SearchQuery) (map[string]any, error)
	SetPayload(ctx context.Context, q domain.SearchQuery, payload map[string]any) error
}

type Snapshot interface {
	Write(payload map[string]any) error
	Read() (map[string]any, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type SearchService struct {
	provider           Provider
	engine             *ranking.Engine
	cache              Cache
	snapshot           Snapshot
	producer           Producer
	topic              string
	notificationsTopic string
	currency           string
}

type SearchServiceOption func(*SearchService)

func WithCache(cache Cache) SearchServiceOption {
	return func(s *SearchService) { s.cache = cache }
}

func WithSnapshot(snapshot Snapshot) SearchServiceOption {
	return func(s *SearchService) { s.snapshot = snapshot }
}

func WithProducer(producer Producer, topic string) SearchServiceOption {
	return func(s *SearchService) {
		s.producer = producer
		s.topic = topic
	}
}

// WithNotificationsTopic mirrors every search event onto a second topic for
// the notifications worker.
func WithNotificationsTopic(topic string) SearchServiceOption {
	return func(s *SearchService) { s.notificationsTopic = topic }
}

func WithCurrency(code string) SearchServiceOption {
	return func(s *SearchService) { s.currency = code }
}

func NewSearchService(provider Provider, engine *ranking.Engine, opts ...SearchServiceOption) *SearchService {
	service := &SearchService{
		provider: provider,
		engine:   engine,
		currency: "INR",
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Search fetches the raw payload (cache first, provider on miss), stores it,
// and runs the ranking engine over it. An empty direct-flight list is a valid
// result, not an error.
func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery, opts domain.RankOptions) (*domain.SearchResult, error) {
	var payload map[string]any
	fromCache := false

	if s.cache != nil {
		if cached, err := s.cache.GetPayload(ctx, q); err == nil && cached != nil {
			payload = cached
			fromCache = true
		}
	}

	if payload == nil {
		fetched, err := s.provider.Search(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoData, err)
		}
		payload = fetched

		if s.cache != nil {
			if err := s.cache.SetPayload(ctx, q, payload); err != nil {
				log.Printf("WARNING: failed to cache payload for %s->%s: %v", q.Origin, q.Destination, err)
			}
		}
		if s.snapshot != nil {
			if err := s.snapshot.Write(payload); err != nil {
				log.Printf("WARNING: failed to write search snapshot: %v", err)
			}
		}
	}

	result := s.rank(q, payload, opts, fromCache)
	s.publishEvent(ctx, result)
	return result, nil
}

// Replay re-ranks the last stored payload, typically with different
// recommendation knobs. No provider call and no event is made.
func (s *SearchService) Replay(ctx context.Context, opts domain.RankOptions) (*domain.SearchResult, error) {
	if s.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	payload, err := s.snapshot.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSnapshot, err)
	}

	result := s.rank(queryFromPayload(payload), payload, opts, true)
	return result, nil
}

func (s *SearchService) rank(q domain.SearchQuery, payload map[string]any, opts domain.RankOptions, fromCache bool) *domain.SearchResult {
	opts = opts.Normalize()

	flights := s.engine.DirectFlights(payload)
	recommended, alternatives := ranking.Recommend(flights, opts.MaxPicks, opts.TolerancePct)

	return &domain.SearchResult{
		ID:           uuid.NewString(),
		Query:        q,
		Flights:      flights,
		Recommended:  recommended,
		Alternatives: alternatives,
		FetchedAt:    time.Now(),
		FromCache:    fromCache,
	}
}

func (s *SearchService) publishEvent(ctx context.Context, result *domain.SearchResult) {
	if s.producer == nil || s.topic == "" {
		return
	}

	var cheapest int64
	if len(result.Flights) > 0 && result.Flights[0].PriceKnown() {
		cheapest = result.Flights[0].PriceValue
	}

	event := kafka.SearchEvent{
		ID:            result.ID,
		Origin:        result.Query.Origin,
		Destination:   result.Query.Destination,
		Date:          result.Query.Date,
		DirectCount:   len(result.Flights),
		CheapestPrice: cheapest,
		Currency:      s.currency,
		FetchedAt:     result.FetchedAt,
	}
	if err := s.producer.Publish(ctx, s.topic, event.ID, event); err != nil {
		log.Printf("WARNING: failed to publish search event %s: %v", event.ID, err)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, event.ID, event); err != nil {
			log.Printf("WARNING: failed to publish notification for search %s: %v", event.ID, err)
		}
	}
}

// queryFromPayload recovers the route from the provider's echoed search
// parameters so replayed results still say what was searched.
func queryFromPayload(payload map[string]any) domain.SearchQuery {
	params, _ := payload["search_parameters"].(map[string]any)
	if params == nil {
		return domain.SearchQuery{}
	}
	get := func(key string) string {
		s, _ := params[key].(string)
		return s
	}
	return domain.SearchQuery{
		Origin:      get("departure_id"),
		Destination: get("arrival_id"),
		Date:        get("outbound_date"),
	}
}

var _ SearchUseCase = (*SearchService)(nil)
