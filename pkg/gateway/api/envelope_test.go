package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/simple-gateway/pkg/gateway"
)

func TestResponder_Envelope(t *testing.T) {
	rs := NewResponder(nil, fixedClock)

	env := rs.Envelope(0, "", nil)
	assert.Equal(t, http.StatusOK, env.Code)
	assert.Equal(t, "success", env.Message)
	assert.Equal(t, int64(1767225600000), env.Timestamp)
	assert.Nil(t, env.Total)
}

func TestResponder_RespondList(t *testing.T) {
	rs := NewResponder(nil, fixedClock)
	rr := httptest.NewRecorder()

	rs.RespondList(rr, httptest.NewRequest("GET", "/", nil), "ok", []int{1, 2}, 2)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"code":200,"message":"ok","data":[1,2],"timestamp":1767225600000,"total":2}`, rr.Body.String())
}

func TestResponder_ErrorMapping(t *testing.T) {
	rs := NewResponder(slog.New(slog.NewTextHandler(io.Discard, nil)), fixedClock)

	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", &gateway.ValidationError{Field: "id", Message: "Invalid news ID"}, 400, "Invalid news ID"},
		{"not found", &gateway.NotFoundError{Resource: "Image", ID: "k"}, 404, "Image not found"},
		{"credentials", gateway.ErrInvalidCredentials, 401, "Invalid credentials"},
		{"backend", &gateway.BackendError{Backend: "blob", Op: "upload image", Err: errors.New("bucket gone")}, 500, "Failed to upload image: bucket gone"},
		{"other", errors.New("boom"), 500, "Failed to do thing: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			rs.Error(rr, httptest.NewRequest("GET", "/", nil), "do thing", tt.err)

			assert.Equal(t, tt.code, rr.Code)
			assert.Contains(t, rr.Body.String(), `"message":"`+tt.message+`"`)
		})
	}
}
