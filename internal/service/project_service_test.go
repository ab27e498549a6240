package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/tenant"
)

func TestProjectIsolation(t *testing.T) {
	e := newEnv(t)
	acme, alice := e.register(t, "Acme", "alice@acme.example")
	beta, bob := e.register(t, "Beta", "bob@beta.example")

	aliceCtx := e.as(t, alice)
	bobCtx := e.as(t, bob)

	tower, err := e.services.Projects.Create(aliceCtx, CreateProjectInput{Name: "Tower"})
	require.NoError(t, err)
	require.Equal(t, acme.ID, tower.CompanyID)
	require.Equal(t, alice.ID, tower.CreatedBy)
	require.Equal(t, models.ProjectStatusPlanning, tower.Status)

	_, err = e.services.Projects.Create(bobCtx, CreateProjectInput{Name: "Bridge", Status: models.ProjectStatusActive})
	require.NoError(t, err)

	list, err := e.services.Projects.List(aliceCtx, store.ListProjectsOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, tower.ID, list[0].ID)

	_, err = e.services.Projects.Get(bobCtx, tower.ID)
	require.ErrorIs(t, err, store.ErrProjectNotFound)

	name := "Hijacked"
	_, err = e.services.Projects.Update(bobCtx, tower.ID, ProjectUpdate{Name: &name})
	require.ErrorIs(t, err, store.ErrProjectNotFound)

	require.ErrorIs(t, e.services.Projects.Delete(bobCtx, tower.ID), store.ErrProjectNotFound)

	// moving a project to another company is refused and leaves it where it was
	_, err = e.services.Projects.Update(aliceCtx, tower.ID, ProjectUpdate{CompanyID: &beta.ID})
	require.ErrorIs(t, err, tenant.ErrOwnershipChange)

	stored, err := e.services.Projects.Get(aliceCtx, tower.ID)
	require.NoError(t, err)
	require.Equal(t, acme.ID, stored.CompanyID)
	require.Equal(t, "Tower", stored.Name)
}

func TestProjectValidation(t *testing.T) {
	e := newEnv(t)
	_, alice := e.register(t, "Acme", "alice@acme.example")
	ctx := e.as(t, alice)

	_, err := e.services.Projects.Create(ctx, CreateProjectInput{Name: "  "})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.services.Projects.Create(ctx, CreateProjectInput{Name: "Tower", Status: "demolished"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.services.Projects.List(ctx, store.ListProjectsOptions{Status: "demolished"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.services.Projects.Create(context.Background(), CreateProjectInput{Name: "Tower"})
	require.Error(t, err)
}

func TestTasks(t *testing.T) {
	e := newEnv(t)
	acme, alice := e.register(t, "Acme", "alice@acme.example")
	_, bob := e.register(t, "Beta", "bob@beta.example")

	aliceCtx := e.as(t, alice)
	bobCtx := e.as(t, bob)

	project, err := e.services.Projects.Create(aliceCtx, CreateProjectInput{Name: "Tower"})
	require.NoError(t, err)

	task, err := e.services.Tasks.Create(aliceCtx, project.ID, CreateTaskInput{Title: "Pour slab", AssigneeID: &alice.ID})
	require.NoError(t, err)
	require.Equal(t, acme.ID, task.CompanyID)
	require.Equal(t, models.TaskStatusTodo, task.Status)

	// an assignee from another company is not visible
	_, err = e.services.Tasks.Create(aliceCtx, project.ID, CreateTaskInput{Title: "Frame", AssigneeID: &bob.ID})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.services.Tasks.Create(bobCtx, project.ID, CreateTaskInput{Title: "Sneak in"})
	require.ErrorIs(t, err, store.ErrProjectNotFound)

	_, err = e.services.Tasks.ListByProject(bobCtx, project.ID)
	require.ErrorIs(t, err, store.ErrProjectNotFound)

	done := models.TaskStatusDone
	updated, err := e.services.Tasks.Update(aliceCtx, task.ID, TaskUpdate{Status: &done, ClearAssignee: true})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusDone, updated.Status)
	require.Nil(t, updated.AssigneeID)

	_, err = e.services.Tasks.Update(bobCtx, task.ID, TaskUpdate{Status: &done})
	require.ErrorIs(t, err, store.ErrTaskNotFound)

	foreign := uuid.Must(uuid.NewV7())
	_, err = e.services.Tasks.Update(aliceCtx, task.ID, TaskUpdate{CompanyID: &foreign})
	require.ErrorIs(t, err, tenant.ErrOwnershipChange)

	tasks, err := e.services.Tasks.ListByProject(aliceCtx, project.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, acme.ID, tasks[0].CompanyID)
}

func TestRootCrossTenantListing(t *testing.T) {
	e := newEnv(t)
	acme, alice := e.register(t, "Acme", "alice@acme.example")

	_, err := e.services.Projects.Create(e.as(t, alice), CreateProjectInput{Name: "Tower"})
	require.NoError(t, err)

	// a root caller whose scope was resolved to acme sees acme's data only
	rootCtx := e.as(t, e.rootUser)
	tenant.ScopeFromContext(rootCtx).Set(acme.ID)

	list, err := e.services.Projects.List(rootCtx, store.ListProjectsOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	// a project created while targeting acme is stamped with acme
	created, err := e.services.Projects.Create(rootCtx, CreateProjectInput{Name: "Audit"})
	require.NoError(t, err)
	require.Equal(t, acme.ID, created.CompanyID)
}
