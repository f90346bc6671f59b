package status

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/usecase/usecasetest"
)

func newUseCase() (*UseCase, *usecasetest.Statuses, *usecasetest.Buffer) {
	groups := usecasetest.NewGroups()
	groups.Seed("fam", "alice", "bob")
	repo := &usecasetest.Statuses{}
	buffer := &usecasetest.Buffer{}
	return New(repo, groups, buffer, nil), repo, buffer
}

func TestCreateEntry(t *testing.T) {
	uc, repo, _ := newUseCase()
	entry, err := uc.CreateEntry(context.Background(), "bob", &domain.StatusEntry{
		GroupID: "fam",
		Moods:   []string{"happy"},
		Note:    "slept well",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "bob", entry.UserID)
	assert.Equal(t, []string{}, entry.Feelings)
	assert.Len(t, repo.Entries, 1)
}

func TestCreateEntry_Rejections(t *testing.T) {
	uc, repo, _ := newUseCase()
	ctx := context.Background()

	_, err := uc.CreateEntry(ctx, "bob", &domain.StatusEntry{GroupID: "fam", Moods: []string{"grumpy"}})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.CreateEntry(ctx, "bob", &domain.StatusEntry{GroupID: "fam", Feelings: []string{"happy"}})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.CreateEntry(ctx, "mallory", &domain.StatusEntry{GroupID: "fam"})
	assert.ErrorIs(t, err, domain.ErrNotMember)

	assert.Empty(t, repo.Entries)
}

func TestCreateEntry_Buffered(t *testing.T) {
	uc, repo, buffer := newUseCase()
	repo.Fail = true

	_, err := uc.CreateEntry(context.Background(), "bob", &domain.StatusEntry{GroupID: "fam", Moods: []string{"sad"}})
	require.NoError(t, err)
	assert.Equal(t, 1, buffer.Statuses)
}

func TestListMine(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()
	for _, who := range []string{"alice", "bob", "bob"} {
		_, err := uc.CreateEntry(ctx, who, &domain.StatusEntry{GroupID: "fam"})
		require.NoError(t, err)
	}

	mine, err := uc.ListMine(ctx, "bob", 10, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
