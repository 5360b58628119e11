// Package httpapi serves feature extraction over HTTP and provides a client
// for it.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-features/internal/domain"
	"github.com/park285/cheese-features/internal/pgn"
	"github.com/park285/cheese-features/internal/service/extract"
	"github.com/park285/cheese-features/pkg/chessdto"
)

const (
	PathFeatures = "/v1/features"
	PathHealth   = "/healthz"

	defaultMaxBodyBytes   = 8 << 20
	defaultExtractTimeout = 2 * time.Minute
)

// Extractor scores a PGN stream without persisting it.
type Extractor interface {
	Extract(ctx context.Context, sc *pgn.Scanner) (*domain.Tables, *extract.Summary, error)
}

// Response is the body of a successful POST /v1/features.
type Response struct {
	Summary *extract.Summary `json:"summary"`
	Tables  *domain.Tables   `json:"tables"`
}

type Config struct {
	MaxBodyBytes   int
	ExtractTimeout time.Duration
}

type Handler struct {
	ext    Extractor
	cfg    Config
	logger *zap.Logger
}

func NewHandler(ext Extractor, cfg Config, logger *zap.Logger) (*Handler, error) {
	if ext == nil {
		return nil, errors.New("extractor is required")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = defaultExtractTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{ext: ext, cfg: cfg, logger: logger}, nil
}

// NewServer wraps h in a fasthttp server that rejects oversized bodies.
func NewServer(h *Handler) *fasthttp.Server {
	return &fasthttp.Server{
		Handler:            h.Handle,
		Name:               "featured",
		MaxRequestBodySize: h.cfg.MaxBodyBytes,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       h.cfg.ExtractTimeout + 10*time.Second,
	}
}

func (h *Handler) Handle(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case PathHealth:
		if !ctx.IsGet() && !ctx.IsHead() {
			h.methodNotAllowed(ctx, fasthttp.MethodGet)
			return
		}
		ctx.SetContentType("text/plain; charset=utf-8")
		ctx.SetBodyString("ok")
	case PathFeatures:
		if !ctx.IsPost() {
			h.methodNotAllowed(ctx, fasthttp.MethodPost)
			return
		}
		h.features(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, chessdto.APIError{Code: chessdto.CodeNotFound})
	}
}

func (h *Handler) features(ctx *fasthttp.RequestCtx) {
	body := ctx.PostBody()
	if len(body) > h.cfg.MaxBodyBytes {
		writeError(ctx, fasthttp.StatusRequestEntityTooLarge, chessdto.APIError{Code: chessdto.CodeBodyTooLarge})
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(ctx, fasthttp.StatusBadRequest, chessdto.APIError{Code: chessdto.CodeEmptyBody})
		return
	}

	// body is only valid for the lifetime of ctx; Extract finishes before we return.
	reqCtx, cancel := context.WithTimeout(context.Background(), h.cfg.ExtractTimeout)
	defer cancel()
	started := time.Now()
	tables, summary, err := h.ext.Extract(reqCtx, pgn.NewScanner(bytes.NewReader(body)))
	if err != nil {
		h.logger.Warn("features_request_failed", zap.Error(err), zap.Int("bytes", len(body)))
		if errors.Is(err, context.DeadlineExceeded) {
			writeError(ctx, fasthttp.StatusGatewayTimeout, chessdto.APIError{Code: chessdto.CodeTimeout, Message: err.Error(), Retryable: true})
			return
		}
		writeError(ctx, fasthttp.StatusUnprocessableEntity, chessdto.APIError{Code: chessdto.CodeExtractFailed, Message: err.Error()})
		return
	}
	h.logger.Info("features_request",
		zap.String("run_id", summary.RunID),
		zap.Int("read", summary.Read),
		zap.Int("emitted", summary.Emitted),
		zap.Duration("took", time.Since(started)),
	)
	writeJSON(ctx, fasthttp.StatusOK, Response{Summary: summary, Tables: tables})
}

func (h *Handler) methodNotAllowed(ctx *fasthttp.RequestCtx, allow string) {
	ctx.Response.Header.Set("Allow", allow)
	writeError(ctx, fasthttp.StatusMethodNotAllowed, chessdto.APIError{Code: chessdto.CodeMethodNotAllowed})
}

func writeError(ctx *fasthttp.RequestCtx, status int, e chessdto.APIError) {
	writeJSON(ctx, status, e)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"code":"encode_failed"}`)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(payload)
}
