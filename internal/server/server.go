package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	eventbus "github.com/queryward/queryward/internal/eventbus"
	events "github.com/queryward/queryward/internal/events"
	language "github.com/queryward/queryward/internal/language"
	reqid "github.com/queryward/queryward/internal/reqid"
	schema "github.com/queryward/queryward/internal/schema"
	validation "github.com/queryward/queryward/internal/validation"
)

// Handler is an http.Handler that serves a document validation endpoint.
// It parses requests, runs semantic analysis against the current schema, and
// reports every violation found.
type Handler struct {
	schema atomic.Pointer[schema.Schema]
	opt    Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// New creates a new validation HTTP handler serving the given schema.
func New(s *schema.Schema, opts ...Option) *Handler {
	op := Options{Timeout: 10 * time.Second}
	for _, f := range opts {
		f(&op)
	}
	h := &Handler{opt: op}
	h.schema.Store(s)
	return h
}

// Reload swaps the schema all subsequent requests are validated against.
// In-flight requests keep the schema they started with.
func (h *Handler) Reload(s *schema.Schema) { h.schema.Store(s) }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, _ = reqid.NewContext(ctx)
	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	if r.Method == http.MethodOptions {
		if len(h.opt.CORS.AllowedOrigins) > 0 {
			setCORSHeaders(w, r, h.opt.CORS)
		}
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, errorResult("method not allowed"), h.opt.Pretty)
		return
	}

	req, batch, berr := parseRequest(r, h.opt.MaxBodyBytes)
	if berr != nil {
		status = http.StatusBadRequest
		if berr.Message == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResult(berr.Message), h.opt.Pretty)
		return
	}

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	if batch != nil {
		// Batched requests always answer 200; each entry carries its own
		// verdict.
		out := make([]ValidationResult, len(batch))
		for i := range batch {
			out[i] = h.validateOne(ctx, batch[i])
		}
		writeJSON(w, status, out, h.opt.Pretty)
		return
	}

	res := h.validateOne(ctx, req)
	if !res.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res, h.opt.Pretty)
}

func (h *Handler) validateOne(ctx context.Context, req ValidationRequest) ValidationResult {
	start := time.Now()
	eventbus.Publish(ctx, events.ValidationStart{Query: req.Query, OperationName: req.OperationName})

	res := h.run(req)

	eventbus.Publish(ctx, events.ValidationFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		Valid:         res.Valid,
		Rules:         rulesOf(res.Errors),
		Duration:      time.Since(start),
	})
	return res
}

func (h *Handler) run(req ValidationRequest) ValidationResult {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		msg := err.Error()
		var locs []ResultLocation
		if ge, ok := err.(*language.Error); ok {
			msg = ge.Message
			for _, l := range ge.Locations {
				locs = append(locs, ResultLocation{Line: l.Line, Column: l.Column})
			}
		}
		return ValidationResult{Errors: []ResultError{{Rule: "SyntaxError", Message: msg, Locations: locs}}}
	}

	errs := validation.Validate(h.schema.Load(), doc)
	if len(errs) == 0 {
		return ValidationResult{Valid: true}
	}
	out := ValidationResult{Errors: make([]ResultError, len(errs))}
	for i, e := range errs {
		re := ResultError{Rule: string(e.Rule), Message: e.Message}
		for _, pos := range e.Locations {
			re.Locations = append(re.Locations, ResultLocation{Line: pos.Line, Column: pos.Column})
		}
		out.Errors[i] = re
	}
	return out
}

// ------------------ Request parsing ------------------

type ValidationRequest struct {
	Query         string `json:"query"`
	OperationName string `json:"operationName,omitempty"`
}

func parseRequest(r *http.Request, maxBody int64) (ValidationRequest, []ValidationRequest, *language.Error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query().Get("query")
		if q == "" {
			return ValidationRequest{}, nil, &language.Error{Message: "missing 'query'"}
		}
		op := r.URL.Query().Get("operationName")
		return ValidationRequest{Query: q, OperationName: op}, nil, nil
	}

	// POST
	ct := r.Header.Get("Content-Type")
	if ct == "" || ct == "application/json" || strings.HasPrefix(ct, "application/json;") {
		reader := io.Reader(r.Body)
		if maxBody > 0 {
			reader = io.LimitReader(r.Body, maxBody+1)
		}
		body, err := io.ReadAll(reader)
		if err != nil {
			return ValidationRequest{}, nil, &language.Error{Message: "failed to read body"}
		}
		defer r.Body.Close()
		if maxBody > 0 && int64(len(body)) > maxBody {
			return ValidationRequest{}, nil, &language.Error{Message: errBodyTooLargeMessage}
		}

		// Try array (batch)
		if len(body) > 0 && body[0] == '[' {
			var arr []ValidationRequest
			if err := json.Unmarshal(body, &arr); err != nil {
				return ValidationRequest{}, nil, &language.Error{Message: "invalid JSON"}
			}
			if len(arr) == 0 {
				return ValidationRequest{}, nil, &language.Error{Message: "empty batch"}
			}
			return ValidationRequest{}, arr, nil
		}
		// Single
		var req ValidationRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return ValidationRequest{}, nil, &language.Error{Message: "invalid JSON"}
		}
		if req.Query == "" {
			return ValidationRequest{}, nil, &language.Error{Message: "missing 'query'"}
		}
		return req, nil, nil
	}

	return ValidationRequest{}, nil, &language.Error{Message: "unsupported Content-Type"}
}

// ------------------ Response formatting ------------------

type ResultLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type ResultError struct {
	Rule      string           `json:"rule,omitempty"`
	Message   string           `json:"message"`
	Locations []ResultLocation `json:"locations,omitempty"`
}

type ValidationResult struct {
	Valid  bool          `json:"valid"`
	Errors []ResultError `json:"errors,omitempty"`
}

func errorResult(message string) ValidationResult {
	return ValidationResult{Errors: []ResultError{{Message: message}}}
}

func rulesOf(errs []ResultError) []string {
	if len(errs) == 0 {
		return nil
	}
	rules := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Rule != "" {
			rules = append(rules, e.Rule)
		}
	}
	return rules
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

const errBodyTooLargeMessage = "body too large"

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	allowed := false
	for _, o := range opts.AllowedOrigins {
		if o == "*" || o == origin {
			allowed = true
			break
		}
	}
	if !allowed {
		return
	}
	if contains(opts.AllowedOrigins, "*") {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
