package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/pkg/httpcontext"
)

const secret = "test-secret"

type sessionSet map[string]bool

func (s sessionSet) Get(_ context.Context, id string) (*domain.Session, error) {
	if !s[id] {
		return nil, domain.ErrSessionNotFound
	}
	return &domain.Session{ID: id}, nil
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (*domain.Session, error) {
	return nil, errors.New("dial tcp 127.0.0.1:6379: connection refused")
}

func run(t *testing.T, sessions SessionLookup, authorization string) (*fasthttp.RequestCtx, string, bool) {
	t.Helper()
	var seen string
	called := false
	handler := JWTAuth(secret, sessions, nil)(func(ctx *fasthttp.RequestCtx) {
		called = true
		seen = string(ctx.Request.Header.Peek(httpcontext.HeaderUserID))
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set(httpcontext.HeaderUserID, "spoofed")
	if authorization != "" {
		ctx.Request.Header.Set("Authorization", authorization)
	}
	handler(ctx)
	return ctx, seen, called
}

func TestJWTAuth_AcceptsIssuedToken(t *testing.T) {
	token, err := NewJWTIssuer(secret, "carecircle").Issue("alice", "s1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, seen, called := run(t, sessionSet{"s1": true}, "Bearer "+token)
	assert.True(t, called)
	assert.Equal(t, "alice", seen)
}

func TestJWTAuth_Rejections(t *testing.T) {
	issuer := NewJWTIssuer(secret, "carecircle")
	expired, err := issuer.Issue("alice", "s1", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	revoked, err := issuer.Issue("alice", "gone", time.Now().Add(time.Hour))
	require.NoError(t, err)
	foreign, err := NewJWTIssuer("other-secret", "x").Issue("alice", "s1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	cases := map[string]string{
		"missing":  "",
		"garbage":  "Bearer not-a-jwt",
		"expired":  "Bearer " + expired,
		"revoked":  "Bearer " + revoked,
		"foreign":  "Bearer " + foreign,
		"no user":  "Bearer " + noUser,
		"alg none": "Bearer eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJ1c2VyX2lkIjoiYWxpY2UifQ.",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			ctx, _, called := run(t, sessionSet{"s1": true}, header)
			assert.False(t, called)
			assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
		})
	}
}

func TestJWTAuth_WithoutSessionLookup(t *testing.T) {
	token, err := NewJWTIssuer(secret, "carecircle").Issue("bob", "any", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, seen, called := run(t, nil, token)
	assert.True(t, called, "bare tokens without the Bearer prefix are accepted")
	assert.Equal(t, "bob", seen)
}

func TestJWTAuth_SessionStoreOutage(t *testing.T) {
	token, err := NewJWTIssuer(secret, "carecircle").Issue("alice", "s1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	ctx, seen, called := run(t, brokenStore{}, "Bearer "+token)
	assert.False(t, called)
	assert.Empty(t, seen)
	assert.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
}
