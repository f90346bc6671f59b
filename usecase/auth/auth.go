package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/repository"
)

// TokenIssuer signs bearer tokens bound to a session.
type TokenIssuer interface {
	Issue(userID, sessionID string, expiresAt time.Time) (string, error)
}

// Identity is what the external identity provider asserted about the caller.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
	AvatarURL   string
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   TokenIssuer
	logger   *zap.Logger
	now      func() time.Time
}

func New(users repository.UserRepository, sessions repository.SessionRepository, tokens TokenIssuer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateSession opens a session for an asserted identity, provisioning the
// user on first sight when a display name is supplied.
func (uc *UseCase) CreateSession(ctx context.Context, id Identity, ttl time.Duration) (*domain.Session, error) {
	if id.UserID == "" {
		return nil, domain.Invalid("user id is required")
	}
	if _, err := uc.users.GetByID(ctx, id.UserID); err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) || id.DisplayName == "" {
			return nil, err
		}
		user := &domain.User{
			ID:          id.UserID,
			Email:       id.Email,
			DisplayName: id.DisplayName,
			AvatarURL:   id.AvatarURL,
			Role:        "member",
			Status:      "active",
		}
		if err := uc.users.Upsert(ctx, user); err != nil {
			return nil, err
		}
		uc.logger.Info("user provisioned", zap.String("user_id", user.ID))
	}

	now := uc.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    id.UserID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := uc.sign(session); err != nil {
		return nil, err
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// RefreshSession extends a live session and issues a fresh token for it.
func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Session, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = uc.now().Add(ttl)
	if err := uc.sign(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *UseCase) sign(session *domain.Session) error {
	if uc.tokens == nil {
		return nil
	}
	token, err := uc.tokens.Issue(session.UserID, session.ID, session.ExpiresAt)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	session.Token = token
	return nil
}
