package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/pkg/httpcontext"
)

const (
	claimUserID    = "user_id"
	claimSessionID = "session_id"
)

// SessionLookup confirms a session has not been revoked.
type SessionLookup interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
}

// JWTIssuer signs HS256 tokens bound to a session.
type JWTIssuer struct {
	secret []byte
	issuer string
}

func NewJWTIssuer(secret, issuer string) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), issuer: issuer}
}

func (i *JWTIssuer) Issue(userID, sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		claimUserID:    userID,
		claimSessionID: sessionID,
		"iss":          i.issuer,
		"iat":          time.Now().Unix(),
		"exp":          expiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// JWTAuth validates the bearer token and forwards the user id to handlers
// in the X-User-ID header. A caller-supplied X-User-ID is always discarded.
// When sessions is non-nil, tokens whose session was revoked are rejected
// with 401; a failing session store answers 503 so clients can retry.
func JWTAuth(secret string, sessions SessionLookup, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Request.Header.Del(httpcontext.HeaderUserID)

			tokenString := extractToken(ctx)
			if tokenString == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, keyFunc)
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			claims, _ := token.Claims.(jwt.MapClaims)
			userID, _ := claims[claimUserID].(string)
			if userID == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			if sessions != nil {
				sessionID, _ := claims[claimSessionID].(string)
				lookupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				_, err := sessions.Get(lookupCtx, sessionID)
				cancel()
				switch {
				case domain.IsDomainError(err, domain.ErrCodeNotFound):
					logger.Debug("session rejected", zap.String("session_id", sessionID))
					ctx.SetStatusCode(fasthttp.StatusUnauthorized)
					return
				case err != nil:
					logger.Error("session lookup failed", zap.String("session_id", sessionID), zap.Error(err))
					ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
					return
				}
			}

			ctx.Request.Header.Set(httpcontext.HeaderUserID, userID)
			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
