package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/repository"
	"github.com/fastygo/carecircle/usecase"
	"github.com/fastygo/carecircle/usecase/usecasetest"
)

type fixture struct {
	uc     *UseCase
	tasks  *usecasetest.Tasks
	buffer *usecasetest.Buffer
}

func newFixture() fixture {
	groups := usecasetest.NewGroups()
	groups.Seed("fam", "alice", "bob")
	groups.Seed("other", "carol")
	tasks := usecasetest.NewTasks()
	buffer := &usecasetest.Buffer{}
	return fixture{
		uc:     New(tasks, groups, buffer, nil),
		tasks:  tasks,
		buffer: buffer,
	}
}

func TestCreateTask_DefaultsAndEvent(t *testing.T) {
	f := newFixture()
	created, err := f.uc.CreateTask(context.Background(), "bob", &domain.Task{GroupID: "fam", Title: "Pick up meds"})
	require.NoError(t, err)

	assert.Equal(t, "bob", created.UserID)
	assert.Equal(t, domain.TaskStatusPending, created.Status)
	assert.Equal(t, domain.TaskPriorityMedium, created.Priority)

	require.Len(t, f.tasks.Events, 1)
	ev := f.tasks.Events[0]
	assert.Equal(t, created.ID, ev.TaskID)
	assert.Equal(t, "fam", ev.GroupID)
	assert.Equal(t, "bob", ev.UserID)
	assert.Equal(t, domain.TaskStatusPending, ev.Status)
}

func TestCreateTask_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.CreateTask(ctx, "bob", &domain.Task{GroupID: "fam"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.CreateTask(ctx, "bob", &domain.Task{GroupID: "fam", Title: "x", Priority: "urgent"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.CreateTask(ctx, "bob", &domain.Task{GroupID: "other", Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNotMember)

	assert.Empty(t, f.tasks.Events)
}

func TestUpdateTask_MergesAndLogs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.uc.CreateTask(ctx, "alice", &domain.Task{GroupID: "fam", Title: "Groceries"})
	require.NoError(t, err)

	updated, err := f.uc.UpdateTask(ctx, "bob", &domain.Task{ID: created.ID, Status: domain.TaskStatusDone})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", updated.Title)
	assert.Equal(t, domain.TaskStatusDone, updated.Status)

	require.Len(t, f.tasks.Events, 2)
	assert.Equal(t, "bob", f.tasks.Events[1].UserID)
	assert.Equal(t, domain.TaskStatusDone, f.tasks.Events[1].Status)

	_, err = f.uc.UpdateTask(ctx, "bob", &domain.Task{ID: created.ID, Status: "blocked"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.UpdateTask(ctx, "carol", &domain.Task{ID: created.ID, Title: "hijack"})
	assert.ErrorIs(t, err, domain.ErrNotMember)
}

func TestListTasks_RequiresMembership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.uc.CreateTask(ctx, "alice", &domain.Task{GroupID: "fam", Title: "a"})
	require.NoError(t, err)

	tasks, err := f.uc.ListTasks(ctx, "bob", repository.TaskFilter{GroupID: "fam"})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	_, err = f.uc.ListTasks(ctx, "carol", repository.TaskFilter{GroupID: "fam"})
	assert.ErrorIs(t, err, domain.ErrNotMember)
}

func TestWritesBufferedWhenStoreDown(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.uc.CreateTask(ctx, "alice", &domain.Task{GroupID: "fam", Title: "a"})
	require.NoError(t, err)

	f.tasks.Fail = true
	_, err = f.uc.CreateTask(ctx, "alice", &domain.Task{GroupID: "fam", Title: "b"})
	require.NoError(t, err)
	_, err = f.uc.UpdateTask(ctx, "alice", &domain.Task{ID: created.ID, Title: "a2"})
	require.NoError(t, err)
	require.NoError(t, f.uc.DeleteTask(ctx, "alice", created.ID))

	assert.Equal(t, []string{usecase.OperationCreate, usecase.OperationUpdate, usecase.OperationDelete}, f.buffer.Tasks)

	f.buffer.Fail = true
	_, err = f.uc.CreateTask(ctx, "alice", &domain.Task{GroupID: "fam", Title: "c"})
	assert.ErrorIs(t, err, usecasetest.ErrDown)
}

func TestDeleteTask_NotFound(t *testing.T) {
	f := newFixture()
	err := f.uc.DeleteTask(context.Background(), "alice", "missing")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Empty(t, f.buffer.Tasks)
}
