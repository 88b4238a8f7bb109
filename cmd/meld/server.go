package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/fxamacker/cbor/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"github.com/23skdu/meld/internal/app"
	"github.com/23skdu/meld/internal/corpus"
	"github.com/23skdu/meld/internal/meld"
	"github.com/23skdu/meld/internal/text"
	"github.com/23skdu/meld/internal/translate"
)

var (
	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "meld_http_request_duration_seconds",
		Help:    "Time spent processing meld requests",
		Buckets: prometheus.DefBuckets,
	})

	requestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meld_http_request_errors_total",
		Help: "Rejected or failed meld requests by HTTP status",
	}, []string{"status"})
)

// defaultMaxBody caps the size of a CBOR request body.
const defaultMaxBody = 32 << 20

// MeldRequest is the CBOR body of POST /meld. Unset transform fields fall
// back to the server's command-line configuration.
type MeldRequest struct {
	Source     []string   `cbor:"source"`
	Reference  []string   `cbor:"reference"`
	Hypotheses [][]string `cbor:"hypotheses"`
	Lowercase  *bool      `cbor:"lowercase,omitempty"`
	StripBPE   *bool      `cbor:"strip_bpe,omitempty"`
	Detokenize *string    `cbor:"detokenize,omitempty"`
	Unescape   *bool      `cbor:"unescape,omitempty"`
	Normalize  *bool      `cbor:"nfc,omitempty"`
	Translate  string     `cbor:"translate"`
	Head       int        `cbor:"head"`
}

// textConfig overlays the fields set in the request onto base.
func (r *MeldRequest) textConfig(base text.Config) text.Config {
	cfg := base
	cfg.Truecase = ""
	if r.Lowercase != nil {
		cfg.Lowercase = *r.Lowercase
	}
	if r.StripBPE != nil {
		cfg.StripBPE = *r.StripBPE
	}
	if r.Detokenize != nil {
		cfg.Detokenize = *r.Detokenize
	}
	if r.Unescape != nil {
		cfg.Unescape = *r.Unescape
	}
	if r.Normalize != nil {
		cfg.Normalize = *r.Normalize
	}
	return cfg
}

func (r *MeldRequest) corpora() app.Corpora {
	c := app.Corpora{
		Source:    corpus.Named{Path: "source", Lines: r.Source},
		Reference: corpus.Named{Path: "reference", Lines: r.Reference},
	}
	for i, h := range r.Hypotheses {
		c.Hypotheses = append(c.Hypotheses, corpus.Named{Path: fmt.Sprintf("hypotheses[%d]", i), Lines: h})
	}
	return c
}

type Server struct {
	translator translate.Translator
	truecaser  *text.Truecaser
	defaults   text.Config
	alloc      memory.Allocator
	sem        *semaphore.Weighted
	maxWeight  int64
	maxBody    int64
}

// NewServer serves melds with defaults as the transform configuration of
// every request. The truecasing model path in defaults is ignored; tc is
// used instead.
func NewServer(translator translate.Translator, tc *text.Truecaser, defaults text.Config, maxConcurrent int) *Server {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Server{
		translator: translator,
		truecaser:  tc,
		defaults:   defaults,
		alloc:      memory.NewGoAllocator(),
		sem:        semaphore.NewWeighted(int64(maxConcurrent)),
		maxWeight:  int64(maxConcurrent),
		maxBody:    defaultMaxBody,
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/meld", s.handleMeld)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func startServer(ctx context.Context, addr string, cfg text.Config, translator translate.Translator, maxConcurrent int) error {
	var tc *text.Truecaser
	if cfg.Truecase != "" {
		var err error
		if tc, err = text.LoadTruecaser(cfg.Truecase); err != nil {
			return err
		}
		log.Info().Str("model", cfg.Truecase).Int("words", tc.Len()).Msg("Loaded truecasing model")
		cfg.Truecase = ""
	}
	if _, err := text.NewPipeline(cfg); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           NewServer(translator, tc, cfg, maxConcurrent).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("Starting meld server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

var tracer = otel.Tracer("meld-server")

func (s *Server) handleMeld(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "handleMeld")
	defer span.End()

	start := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		s.fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		span.RecordError(err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		s.fail(w, http.StatusBadRequest, fmt.Sprintf("Bad Request (read body): %v", err))
		return
	}
	var req MeldRequest
	if err := cbor.Unmarshal(body, &req); err != nil {
		span.RecordError(err)
		s.fail(w, http.StatusBadRequest, fmt.Sprintf("Bad Request (CBOR decode): %v", err))
		return
	}
	span.SetAttributes(
		attribute.Int("sentence_count", len(req.Source)),
		attribute.Int("hypothesis_count", len(req.Hypotheses)),
	)

	// Admission control
	weight := int64(len(req.Source))
	if weight < 1 {
		weight = 1
	}
	if weight > s.maxWeight {
		s.fail(w, http.StatusRequestEntityTooLarge, "Too many sentences")
		return
	}
	if err := s.sem.Acquire(ctx, weight); err != nil {
		log.Error().Err(err).Msg("Failed to acquire semaphore")
		s.fail(w, http.StatusServiceUnavailable, "Server busy")
		return
	}
	defer s.sem.Release(weight)

	sentences, hyps, err := s.meld(ctx, &req)
	if err != nil {
		span.RecordError(err)
		status := statusFor(err)
		if status >= 500 {
			log.Error().Err(err).Msg("Meld request failed")
		}
		s.fail(w, status, err.Error())
		return
	}

	if r.URL.Query().Get("format") == app.FormatArrow {
		rec, err := meld.NewRecordBatchBuilder(s.alloc).Build(sentences, hyps)
		if err != nil {
			s.fail(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rec.Release()
		w.Header().Set("Content-Type", "application/vnd.apache.arrow.stream")
		if err := meld.WriteStream(w, rec); err != nil {
			log.Warn().Err(err).Msg("Failed to write arrow stream")
		}
		return
	}

	w.Header().Set("Content-Type", "application/cbor")
	if err := cbor.NewEncoder(w).Encode(sentences); err != nil {
		log.Warn().Err(err).Msg("Failed to write CBOR response")
	}
}

func (s *Server) meld(ctx context.Context, req *MeldRequest) ([]meld.Sentence, int, error) {
	p, err := text.NewPipeline(req.textConfig(s.defaults))
	if err != nil {
		return nil, 0, err
	}
	if s.truecaser != nil {
		p = p.WithTruecaser(s.truecaser)
	}
	if req.Translate != "" {
		if _, err := text.ParseLanguage("translate", req.Translate); err != nil {
			return nil, 0, err
		}
	}

	sentences, err := app.NewMelder(p, s.translator, req.Translate, req.Head).Meld(ctx, req.corpora())
	if err != nil {
		return nil, 0, err
	}
	hyps := len(req.Hypotheses)
	if req.Translate != "" {
		hyps++
	}
	return meld.Limit(sentences, req.Head), hyps, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, text.ErrInvalidOption), errors.Is(err, corpus.ErrLengthMismatch):
		return http.StatusBadRequest
	case errors.Is(err, translate.ErrTranslationService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string) {
	requestErrors.WithLabelValues(fmt.Sprint(status)).Inc()
	http.Error(w, msg, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
