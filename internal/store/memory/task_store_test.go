package memory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/tenant"
)

func TestTaskStore(t *testing.T) {
	projects := NewProjectStore()
	tasks := NewTaskStore(projects)
	t1, t2 := newID(), newID()
	ctx := scoped(t1)

	project := &models.Project{ID: newID(), Name: "tower"}
	require.NoError(t, projects.Create(ctx, project))

	task := &models.Task{ID: newID(), ProjectID: project.ID, Title: "pour slab", Status: models.TaskStatusTodo}
	require.NoError(t, tasks.Create(ctx, task))
	require.Equal(t, t1, task.CompanyID)

	// A task cannot be attached to another company's project, nor to a missing one.
	foreign := &models.Task{ID: newID(), ProjectID: project.ID, Title: "sneak in", Status: models.TaskStatusTodo}
	require.ErrorIs(t, tasks.Create(scoped(t2), foreign), store.ErrProjectNotFound)
	orphan := &models.Task{ID: newID(), ProjectID: newID(), Title: "orphan", Status: models.TaskStatusTodo}
	require.ErrorIs(t, tasks.Create(ctx, orphan), store.ErrProjectNotFound)

	list, err := tasks.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = tasks.ListByProject(scoped(t2), project.ID)
	require.NoError(t, err)
	require.Empty(t, list)

	_, err = tasks.Get(scoped(t2), task.ID)
	require.ErrorIs(t, err, store.ErrTaskNotFound)

	update := *task
	update.Status = models.TaskStatusDone
	update.CompanyID = t2
	require.ErrorIs(t, tasks.Update(ctx, &update), tenant.ErrOwnershipChange)

	update.CompanyID = uuid.Nil
	require.NoError(t, tasks.Update(ctx, &update))

	got, err := tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusDone, got.Status)
	require.Equal(t, t1, got.CompanyID)

	require.NoError(t, projects.Delete(ctx, project.ID))
	_, err = tasks.Get(ctx, task.ID)
	require.ErrorIs(t, err, store.ErrTaskNotFound)
}
