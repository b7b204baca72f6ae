// Package identity resolves Google ID tokens to user profiles.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"google.golang.org/api/idtoken"

	"github.com/Vijaykv5/Intereractive-GD/internal/model"
)

type Mode string

const (
	// ModeVerify checks signature, expiry and audience with Google's keys.
	ModeVerify Mode = "verify"
	// ModeDecode reads claims without verifying the signature.
	ModeDecode Mode = "decode"
)

// ValidateFunc matches idtoken.Validate.
type ValidateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Resolver turns an ID token into a model.Identity.
type Resolver struct {
	mode     Mode
	audience string
	validate ValidateFunc
	log      zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithValidator replaces idtoken.Validate, for tests.
func WithValidator(v ValidateFunc) Option {
	return func(r *Resolver) { r.validate = v }
}

func New(mode Mode, clientID string, log zerolog.Logger, opts ...Option) (*Resolver, error) {
	switch mode {
	case ModeVerify:
		if clientID == "" {
			return nil, fmt.Errorf("identity: verify mode requires a Google client id")
		}
	case ModeDecode:
		log.Warn().Msg("identity tokens are decoded without signature verification")
	default:
		return nil, fmt.Errorf("identity: unsupported mode %q", mode)
	}
	r := &Resolver{mode: mode, audience: clientID, validate: idtoken.Validate, log: log}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

func (r *Resolver) Mode() Mode { return r.mode }

// Resolve never panics on malformed input; every token problem is a
// *model.ValidationError.
func (r *Resolver) Resolve(ctx context.Context, token string) (*model.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, model.NewValidationError("token", "No token provided")
	}

	var subject string
	var claims map[string]interface{}
	switch r.mode {
	case ModeVerify:
		payload, err := r.validate(ctx, token, r.audience)
		if err != nil {
			r.log.Debug().Err(err).Msg("token verification failed")
			return nil, model.NewValidationError("token", err.Error())
		}
		subject, claims = payload.Subject, payload.Claims
	default:
		parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
		if err != nil {
			return nil, model.NewValidationError("token", fmt.Sprintf("malformed token: %v", err))
		}
		mc, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			return nil, model.NewValidationError("token", "unexpected token claims")
		}
		claims = mc
		subject = stringClaim(claims, "sub")
	}

	if subject == "" {
		return nil, model.NewValidationError("token", "token has no subject")
	}
	return &model.Identity{
		UserID:  subject,
		Email:   stringClaim(claims, "email"),
		Name:    stringClaim(claims, "name"),
		Picture: stringClaim(claims, "picture"),
	}, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}
