package api

import (
	"net/http"

	"github.com/tendant/simple-gateway/pkg/gateway"
	"github.com/tendant/simple-gateway/pkg/gateway/validation"
)

// LoginRules reject missing and whitespace-only credentials.
var LoginRules = validation.Rules{
	validation.RequiredTrimmed("username", "Username is required"),
	validation.RequiredTrimmed("password", "Password is required"),
}

// AuthHandler serves the login endpoint
type AuthHandler struct {
	service *gateway.AuthService
	rs      *Responder
}

func NewAuthHandler(service *gateway.AuthService, rs *Responder) *AuthHandler {
	return &AuthHandler{service: service, rs: rs}
}

// Login expects a body already checked against LoginRules.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body := ValidatedBody(r)
	result, err := h.service.Login(r.Context(), validation.String(body, "username"), validation.String(body, "password"))
	if err != nil {
		h.rs.Error(w, r, "log in", err)
		return
	}
	h.rs.Respond(w, r, http.StatusOK, "Login successful", result)
}
