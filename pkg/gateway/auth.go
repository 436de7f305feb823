package gateway

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService checks credentials and issues tokens.
type AuthService struct {
	verifier CredentialVerifier
	issuer   TokenIssuer
	logger   *slog.Logger
}

// NewAuthService requires WithCredentialVerifier and WithTokenIssuer.
func NewAuthService(opts ...Option) (*AuthService, error) {
	s := newSettings(opts)
	if s.verifier == nil {
		return nil, fmt.Errorf("credential verifier is required")
	}
	if s.issuer == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	return &AuthService{verifier: s.verifier, issuer: s.issuer, logger: s.logger}, nil
}

// Login returns a token for valid credentials and ErrInvalidCredentials otherwise.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	ok, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		return nil, &BackendError{Backend: "auth", Op: "verify credentials", Err: err}
	}
	if !ok {
		s.logger.WarnContext(ctx, "Rejected login", "username", username)
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(ctx, username)
	if err != nil {
		return nil, &BackendError{Backend: "auth", Op: "issue token", Err: err}
	}
	return &LoginResult{Success: true, Token: token}, nil
}

// StaticVerifier accepts a single username whose password is held as a bcrypt hash.
type StaticVerifier struct {
	username string
	hash     []byte
}

// NewStaticVerifier hashes password with bcrypt.DefaultCost.
func NewStaticVerifier(username, password string) (*StaticVerifier, error) {
	return NewStaticVerifierCost(username, password, bcrypt.DefaultCost)
}

// NewStaticVerifierCost hashes password with the given bcrypt cost.
func NewStaticVerifierCost(username, password string, cost int) (*StaticVerifier, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &StaticVerifier{username: username, hash: hash}, nil
}

func (v *StaticVerifier) Verify(_ context.Context, username, password string) (bool, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1
	err := bcrypt.CompareHashAndPassword(v.hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return userOK, nil
}

// JWTIssuer signs HS256 tokens carrying sub, iat, jti and, with a ttl, exp.
type JWTIssuer struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
	now  func() time.Time
}

// NewJWTIssuer returns an issuer signing with secret. A zero ttl omits exp.
func NewJWTIssuer(secret []byte, ttl time.Duration) (*JWTIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	return &JWTIssuer{
		auth: jwtauth.New("HS256", secret, nil),
		ttl:  ttl,
		now:  time.Now,
	}, nil
}

func (i *JWTIssuer) Issue(_ context.Context, subject string) (string, error) {
	now := i.now()
	claims := map[string]interface{}{
		"sub": subject,
		"iat": now,
		"jti": uuid.NewString(),
	}
	if i.ttl > 0 {
		claims["exp"] = now.Add(i.ttl)
	}
	_, token, err := i.auth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Subject verifies the token signature and time claims and returns its sub claim.
func (i *JWTIssuer) Subject(token string) (string, error) {
	tok, err := jwtauth.VerifyToken(i.auth, token)
	if err != nil {
		return "", err
	}
	return tok.Subject(), nil
}
