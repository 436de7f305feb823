package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-gateway/pkg/gateway"
)

// Envelope is the body of every JSON reply.
type Envelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
	// Total is set on list replies only.
	Total *int `json:"total,omitempty"`
}

// Responder writes envelopes stamped with its clock. The HTTP status always
// equals the envelope code.
type Responder struct {
	now    func() time.Time
	logger *slog.Logger
}

// NewResponder returns a Responder. Nil arguments fall back to time.Now and slog.Default.
func NewResponder(logger *slog.Logger, now func() time.Time) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Responder{now: now, logger: logger}
}

// Envelope builds a reply body. A zero code means 200 and an empty message means "success".
func (rs *Responder) Envelope(code int, message string, data any) Envelope {
	if code == 0 {
		code = http.StatusOK
	}
	if message == "" {
		message = "success"
	}
	return Envelope{
		Code:      code,
		Message:   message,
		Data:      data,
		Timestamp: rs.now().UnixMilli(),
	}
}

// Respond writes data with the given status and message.
func (rs *Responder) Respond(w http.ResponseWriter, r *http.Request, code int, message string, data any) {
	rs.write(w, r, rs.Envelope(code, message, data))
}

// RespondList writes a 200 list reply carrying total.
func (rs *Responder) RespondList(w http.ResponseWriter, r *http.Request, message string, data any, total int) {
	env := rs.Envelope(http.StatusOK, message, data)
	env.Total = &total
	rs.write(w, r, env)
}

// Fail writes an error reply with no data.
func (rs *Responder) Fail(w http.ResponseWriter, r *http.Request, code int, message string) {
	rs.write(w, r, rs.Envelope(code, message, nil))
}

// Error maps err onto the error taxonomy and writes the matching reply.
// Backend failures are logged with op and the route they occurred on.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		verr    *gateway.ValidationError
		missing *gateway.NotFoundError
		backend *gateway.BackendError
	)
	switch {
	case errors.As(err, &verr):
		rs.Fail(w, r, http.StatusBadRequest, verr.Message)
	case errors.As(err, &missing):
		rs.Fail(w, r, http.StatusNotFound, missing.Resource+" not found")
	case errors.Is(err, gateway.ErrInvalidCredentials):
		rs.Fail(w, r, http.StatusUnauthorized, "Invalid credentials")
	case errors.As(err, &backend):
		rs.logger.ErrorContext(r.Context(), "Backend failure",
			"op", backend.Op,
			"backend", backend.Backend,
			"route", routePattern(r),
			"request_id", RequestID(r.Context()),
			"error", backend.Err)
		rs.Fail(w, r, http.StatusInternalServerError, "Failed to "+backend.Op+": "+backend.Err.Error())
	default:
		rs.logger.ErrorContext(r.Context(), "Request failed",
			"op", op,
			"route", routePattern(r),
			"request_id", RequestID(r.Context()),
			"error", err)
		rs.Fail(w, r, http.StatusInternalServerError, "Failed to "+op+": "+err.Error())
	}
}

func (rs *Responder) write(w http.ResponseWriter, r *http.Request, env Envelope) {
	render.Status(r, env.Code)
	render.JSON(w, r, env)
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
