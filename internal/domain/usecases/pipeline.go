package usecases

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/asila/asila/internal/domain/entities"
	"github.com/asila/asila/internal/domain/ports"
)

const (
	// FallbackMessage is returned whenever no verified content can back an answer.
	FallbackMessage = "No verified information available"

	// RateLimitedMessage is returned when a sender exceeds the hourly limit.
	RateLimitedMessage = "You have reached the hourly message limit. Please try again later."
)

// Options tunes the pipeline. Zero values fall back to the defaults below.
type Options struct {
	UserLimit     int           // messages per sender per window
	UserWindow    time.Duration
	AdminLimit    int           // admin API calls per caller per window
	AdminWindow   time.Duration
	CacheTTL      time.Duration
	RemoteTimeout time.Duration // bound on each embed/generate call
	RetrieveLimit int
}

func (o Options) withDefaults() Options {
	if o.UserLimit <= 0 {
		o.UserLimit = 10
	}
	if o.UserWindow <= 0 {
		o.UserWindow = time.Hour
	}
	if o.AdminLimit <= 0 {
		o.AdminLimit = 100
	}
	if o.AdminWindow <= 0 {
		o.AdminWindow = time.Minute
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 24 * time.Hour
	}
	if o.RemoteTimeout <= 0 {
		o.RemoteTimeout = 15 * time.Second
	}
	if o.RetrieveLimit <= 0 {
		o.RetrieveLimit = 5
	}
	return o
}

// Pipeline sequences rate limiting, intent classification, tenant routing,
// cache lookup, retrieval, generation and safety filtering for one inbound
// message. All collaborators are constructor-injected interfaces; the
// pipeline owns every transient per-request value.
type Pipeline struct {
	limiter   ports.RateLimiter
	cache     ports.ResponseCache
	retriever ports.Retriever
	embedder  ports.EmbeddingService
	llm       ports.LLMService
	queryLog  ports.QueryLog
	rules     *RuleSource
	opts      Options
}

// NewPipeline creates a Pipeline with injected dependencies. queryLog may
// be nil when no analytics sink is configured.
func NewPipeline(
	limiter ports.RateLimiter,
	cache ports.ResponseCache,
	retriever ports.Retriever,
	embedder ports.EmbeddingService,
	llm ports.LLMService,
	queryLog ports.QueryLog,
	rules *RuleSource,
	opts Options,
) *Pipeline {
	if rules == nil {
		rules = NewRuleSource(nil)
	}
	return &Pipeline{
		limiter:   limiter,
		cache:     cache,
		retriever: retriever,
		embedder:  embedder,
		llm:       llm,
		queryLog:  queryLog,
		rules:     rules,
		opts:      opts.withDefaults(),
	}
}

// Handle runs the full pipeline for one inbound message and returns the
// terminal result. It never returns an error: every failure mode degrades
// to one of the defined statuses.
func (p *Pipeline) Handle(ctx context.Context, msg entities.InboundMessage) entities.PipelineResult {
	start := time.Now()

	allowed, err := p.limiter.Allow(ctx, "user:"+msg.Sender, p.opts.UserLimit, p.opts.UserWindow)
	if err != nil {
		// Fail open: never block legitimate traffic on a counter-store outage.
		log.Printf("[WARN] rate limit check failed, allowing: %v", err)
		allowed = true
	}
	if !allowed {
		// Rate-limited results are never cached.
		return entities.PipelineResult{Status: entities.StatusRateLimited, Message: RateLimitedMessage}
	}

	rules := p.rules.Rules()
	intent := ClassifyIntent(rules, msg.Body)
	language := DetectLanguage(msg.Body)
	tenantID := RouteTenant(rules, intent.Department)

	// Location extraction from the gateway payload is not implemented yet,
	// so retrieval is tenant-wide. TODO: resolve Latitude/Longitude against
	// the location_aliases table once it is populated.
	location := ""

	fingerprint := Fingerprint(msg.Body, intent.Department)
	cacheKey := BuildCacheKey(tenantID, location, fingerprint, language)

	if text, ok, err := p.cache.Get(ctx, cacheKey); err != nil {
		// Treat an unreachable cache as a miss and keep going.
		log.Printf("[WARN] cache get failed, treating as miss: %v", err)
	} else if ok {
		result := entities.PipelineResult{Status: entities.StatusCached, Message: text}
		p.emitRecord(msg, tenantID, language, location, result, nil, time.Since(start))
		return result
	}

	result, chunkIDs := p.answer(ctx, msg.Body, tenantID, location)

	if err := p.cache.Set(ctx, cacheKey, result.Message, p.opts.CacheTTL); err != nil {
		log.Printf("[WARN] cache set failed: %v", err)
	}

	p.emitRecord(msg, tenantID, language, location, result, chunkIDs, time.Since(start))
	return result
}

// answer computes a fresh response: embed, retrieve, generate, filter.
// Any remote failure or timeout degrades to the fallback answer.
func (p *Pipeline) answer(ctx context.Context, query, tenantID, location string) (entities.PipelineResult, []string) {
	embedCtx, cancel := context.WithTimeout(ctx, p.opts.RemoteTimeout)
	embedding, err := p.embedder.Embed(embedCtx, query)
	cancel()
	if err != nil {
		log.Printf("[WARN] embedding failed, falling back: %v", err)
		return entities.PipelineResult{Status: entities.StatusFallback, Message: FallbackMessage}, nil
	}

	chunks, err := p.retriever.Retrieve(ctx, tenantID, embedding, location, p.opts.RetrieveLimit)
	if err != nil {
		log.Printf("[WARN] retrieval failed, falling back: %v", err)
		return entities.PipelineResult{Status: entities.StatusFallback, Message: FallbackMessage}, nil
	}
	if len(chunks) == 0 {
		return entities.PipelineResult{Status: entities.StatusFallback, Message: FallbackMessage}, nil
	}

	chunkIDs := make([]string, len(chunks))
	for i, c := range chunks {
		chunkIDs[i] = c.ID
	}

	genCtx, cancel := context.WithTimeout(ctx, p.opts.RemoteTimeout)
	raw, err := p.llm.Generate(genCtx, chunks, query)
	cancel()
	if err != nil {
		log.Printf("[WARN] generation failed, falling back: %v", err)
		return entities.PipelineResult{Status: entities.StatusFallback, Message: FallbackMessage}, chunkIDs
	}

	text, safe := FilterResponse(p.rules.Rules(), raw)
	status := entities.StatusRAG
	if !safe {
		status = entities.StatusFiltered
	}
	return entities.PipelineResult{Status: status, Message: text}, chunkIDs
}

// AllowAdmin rate-limits an admin API caller. Admin counters use their own
// limit and window and never interact with end-user counters. Fail-open on
// store errors, same as the user path.
func (p *Pipeline) AllowAdmin(ctx context.Context, callerID string) bool {
	allowed, err := p.limiter.Allow(ctx, "admin:"+callerID, p.opts.AdminLimit, p.opts.AdminWindow)
	if err != nil {
		log.Printf("[WARN] admin rate limit check failed, allowing: %v", err)
		return true
	}
	return allowed
}

// emitRecord sends the analytics record for a handled message. Fire and
// forget: a fresh detached context so an answered request is never held up
// or cancelled along with the sink write.
func (p *Pipeline) emitRecord(
	msg entities.InboundMessage,
	tenantID, language, location string,
	result entities.PipelineResult,
	chunkIDs []string,
	latency time.Duration,
) {
	if p.queryLog == nil {
		return
	}
	rec := entities.QueryRecord{
		Sender:          msg.Sender,
		TenantID:        tenantID,
		QueryText:       msg.Body,
		QueryLanguage:   language,
		Location:        location,
		ResponseText:    result.Message,
		ResponseType:    result.Status,
		RetrievedChunks: chunkIDs,
		Latency:         latency,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.queryLog.LogQuery(ctx, rec); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[WARN] query log write failed: %v", err)
		}
		if result.Status == entities.StatusFallback {
			if err := p.queryLog.LogUnanswered(ctx, rec, "no_verified_content"); err != nil {
				log.Printf("[WARN] unanswered log write failed: %v", err)
			}
		}
	}()
}
