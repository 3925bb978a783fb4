package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	eventbus "github.com/queryward/queryward/internal/eventbus"
	events "github.com/queryward/queryward/internal/events"
)

func TestEventCounters(t *testing.T) {
	bus := eventbus.New()
	eventbus.Use(bus)
	defer eventbus.Use(nil)

	m := New()
	unsub := m.Register()
	defer unsub()

	ctx := context.Background()
	req := httptest.NewRequest("POST", "/validate", nil)
	eventbus.Publish(ctx, events.HTTPFinish{Request: req, Status: 200, Duration: 5 * time.Millisecond})
	eventbus.Publish(ctx, events.ValidationFinish{Valid: true, Duration: time.Millisecond})
	eventbus.Publish(ctx, events.ValidationFinish{
		Valid:    false,
		Rules:    []string{"UnknownField", "UnknownField", "UnknownArgument"},
		Duration: time.Millisecond,
	})
	eventbus.Publish(ctx, events.SchemaReload{Source: "schema.graphql"})
	eventbus.Publish(ctx, events.SchemaReload{Source: "schema.graphql", Err: errors.New("boom")})

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "200")); got != 1 {
		t.Fatalf("http requests = %v", got)
	}
	if got := testutil.ToFloat64(m.validations.WithLabelValues("valid")); got != 1 {
		t.Fatalf("valid validations = %v", got)
	}
	if got := testutil.ToFloat64(m.validations.WithLabelValues("invalid")); got != 1 {
		t.Fatalf("invalid validations = %v", got)
	}
	if got := testutil.ToFloat64(m.violations.WithLabelValues("UnknownField")); got != 2 {
		t.Fatalf("unknown field violations = %v", got)
	}
	if got := testutil.ToFloat64(m.schemaReloads.WithLabelValues("error")); got != 1 {
		t.Fatalf("failed reloads = %v", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	bus := eventbus.New()
	eventbus.Use(bus)
	defer eventbus.Use(nil)

	m := New()
	unsub := m.Register()
	defer unsub()

	eventbus.Publish(context.Background(), events.ValidationFinish{Valid: true})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "queryward_validations_total") {
		t.Fatalf("missing metric in output:\n%s", w.Body.String())
	}
}

func TestUnsubscribeStopsCounting(t *testing.T) {
	bus := eventbus.New()
	eventbus.Use(bus)
	defer eventbus.Use(nil)

	m := New()
	unsub := m.Register()
	unsub()

	eventbus.Publish(context.Background(), events.ValidationFinish{Valid: true})
	if got := testutil.ToFloat64(m.validations.WithLabelValues("valid")); got != 0 {
		t.Fatalf("expected no samples after unsubscribe, got %v", got)
	}
}
