package translate

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/23skdu/meld/internal/cache"
	"github.com/23skdu/meld/internal/client"
)

// Translator turns one line of text into the target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

var tracer = otel.Tracer("meld-translate")

// GuardOptions configures Guarded. Zero values pick the defaults.
type GuardOptions struct {
	Timeout     time.Duration // per call
	MaxFailures int
	Cooldown    time.Duration
	Cache       cache.TextCache
}

// Guarded wraps a Translator with a per-call timeout, a circuit breaker and a cache.
type Guarded struct {
	next    Translator
	breaker *client.CircuitBreaker
	cache   cache.TextCache
	timeout time.Duration
}

// NewGuarded wraps next.
func NewGuarded(next Translator, opts GuardOptions) *Guarded {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 3
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 30 * time.Second
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMapCache()
	}
	return &Guarded{
		next:    next,
		breaker: client.NewCircuitBreaker(opts.MaxFailures, opts.Cooldown),
		cache:   opts.Cache,
		timeout: opts.Timeout,
	}
}

// Breaker exposes the circuit breaker state, mostly for diagnostics.
func (g *Guarded) Breaker() *client.CircuitBreaker { return g.breaker }

func (g *Guarded) Translate(ctx context.Context, text, targetLang string) (string, error) {
	ctx, span := tracer.Start(ctx, "Translate")
	defer span.End()
	span.SetAttributes(
		attribute.String("target_lang", targetLang),
		attribute.Int("text_bytes", len(text)),
	)

	key := cache.Key(targetLang, text)
	if v, ok := g.cache.Get(key); ok {
		translateCacheHits.Inc()
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return v, nil
	}

	start := time.Now()
	var out string
	err := g.breaker.Guard(func() error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		var err error
		out, err = g.next.Translate(callCtx, text, targetLang)
		return err
	})
	translateDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		translateRequests.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	translateRequests.WithLabelValues("ok").Inc()
	g.cache.Put(key, out)
	return out, nil
}
