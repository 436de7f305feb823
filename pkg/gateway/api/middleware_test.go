package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-gateway/pkg/gateway/validation"
)

func fixedClock() time.Time {
	return time.UnixMilli(1767225600000)
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestID(r.Context()))
		w.WriteHeader(http.StatusOK)
	})

	wrapped := RequestIDMiddleware(handler)

	t.Run("generates request ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		rr := httptest.NewRecorder()

		wrapped.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, rr.Header().Get("X-Request-ID"), 36)
	})

	t.Run("uses provided request ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Request-ID", "my-custom-id")
		rr := httptest.NewRecorder()

		wrapped.ServeHTTP(rr, req)

		assert.Equal(t, "my-custom-id", rr.Header().Get("X-Request-ID"))
	})
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	NewMiddlewareChain(RequestIDMiddleware, LoggingMiddleware(logger)).Apply(r)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("Hello"))
	})

	req := httptest.NewRequest("GET", "/items/7", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "Hello", rr.Body.String())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Request completed", entry["msg"])
	assert.Equal(t, "/items/{id}", entry["route"])
	assert.Equal(t, "/items/7", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(5), entry["bytes"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	rs := NewResponder(slog.New(slog.NewJSONHandler(&buf, nil)), fixedClock)

	r := chi.NewRouter()
	r.Use(RecoveryMiddleware(rs))
	r.Get("/boom/{id}", func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	req := httptest.NewRequest("GET", "/boom/1", nil)
	rr := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		r.ServeHTTP(rr, req)
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"code":500,"message":"Internal server error","data":null,"timestamp":1767225600000}`, rr.Body.String())
	assert.Contains(t, buf.String(), `"route":"/boom/{id}"`)
	assert.Contains(t, buf.String(), "something went wrong")
}

func TestCORSMiddleware(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	wrapped := CORSMiddleware(nil, nil)(handler)

	t.Run("simple request without origin", func(t *testing.T) {
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, httptest.NewRequest("GET", "/test", nil))

		assert.True(t, called)
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		called = false
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, httptest.NewRequest("OPTIONS", "/test", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	})
}

type recordingCollector struct {
	method, route string
	status        int
}

func (c *recordingCollector) RecordRequest(method, route string, statusCode int, _ time.Duration, _ int64) {
	c.method, c.route, c.status = method, route, statusCode
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	collector := &recordingCollector{}
	r := chi.NewRouter()
	r.Use(MetricsMiddleware(collector))
	r.Delete("/api/news/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("DELETE", "/api/news/42", nil))

	assert.Equal(t, "DELETE", collector.method)
	assert.Equal(t, "/api/news/{id}", collector.route)
	assert.Equal(t, http.StatusAccepted, collector.status)
}

func TestMiddlewareChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	chain := NewMiddlewareChain(mark("a"), mark("b")).Then(mark("c"))
	chain.Wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestValidateBody(t *testing.T) {
	rs := NewResponder(slog.Default(), fixedClock)
	rules := validation.Rules{validation.RequiredString("title", "Title is required")}

	var seen map[string]any
	handler := ValidateBody(rs, rules)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ValidatedBody(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("passes validated body through", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"A","extra":1}`)))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "A", seen["title"])
		assert.Equal(t, float64(1), seen["extra"])
	})

	t.Run("short-circuits with 400", func(t *testing.T) {
		seen = nil
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader(`{"title":""}`)))

		assert.Nil(t, seen)
		assert.JSONEq(t, `{"code":400,"message":"Title is required","data":null,"timestamp":1767225600000}`, rr.Body.String())
	})
}
