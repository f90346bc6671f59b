package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/usecase/usecasetest"
)

type stubIssuer struct {
	issued int
	err    error
}

func (s *stubIssuer) Issue(userID, sessionID string, expiresAt time.Time) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.issued++
	return userID + "." + sessionID, nil
}

func TestCreateSession_ExistingUser(t *testing.T) {
	users := usecasetest.NewUsers(domain.User{ID: "alice", Status: "active"})
	sessions := usecasetest.NewSessions()
	issuer := &stubIssuer{}
	uc := New(users, sessions, issuer, nil)

	s, err := uc.CreateSession(context.Background(), Identity{UserID: "alice"}, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "alice."+s.ID, s.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, time.Minute)

	stored, err := sessions.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.UserID)
}

func TestCreateSession_Provisioning(t *testing.T) {
	users := usecasetest.NewUsers()
	uc := New(users, usecasetest.NewSessions(), &stubIssuer{}, nil)
	ctx := context.Background()

	_, err := uc.CreateSession(ctx, Identity{UserID: "bob"}, time.Hour)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.CreateSession(ctx, Identity{UserID: "bob", DisplayName: "Bob"}, time.Hour)
	require.NoError(t, err)
	u, err := users.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", u.Name())

	_, err = uc.CreateSession(ctx, Identity{}, time.Hour)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestRefreshAndRevoke(t *testing.T) {
	users := usecasetest.NewUsers(domain.User{ID: "alice"})
	issuer := &stubIssuer{}
	uc := New(users, usecasetest.NewSessions(), issuer, nil)
	ctx := context.Background()

	s, err := uc.CreateSession(ctx, Identity{UserID: "alice"}, time.Minute)
	require.NoError(t, err)

	refreshed, err := uc.RefreshSession(ctx, s.ID, 2*time.Hour)
	require.NoError(t, err)
	assert.True(t, refreshed.ExpiresAt.After(s.ExpiresAt))
	assert.Equal(t, 2, issuer.issued)

	require.NoError(t, uc.RevokeSession(ctx, s.ID))
	_, err = uc.GetSession(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestGetSession_Expired(t *testing.T) {
	users := usecasetest.NewUsers(domain.User{ID: "alice"})
	uc := New(users, usecasetest.NewSessions(), nil, nil)
	ctx := context.Background()

	s, err := uc.CreateSession(ctx, Identity{UserID: "alice"}, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, s.Token)

	uc.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = uc.GetSession(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCreateSession_SignFailure(t *testing.T) {
	users := usecasetest.NewUsers(domain.User{ID: "alice"})
	uc := New(users, usecasetest.NewSessions(), &stubIssuer{err: errors.New("no key")}, nil)

	_, err := uc.CreateSession(context.Background(), Identity{UserID: "alice"}, time.Hour)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))
}
