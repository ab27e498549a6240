package server

import (
	"net/http"

	httpmiddleware "github.com/wolfeidau/sitework/internal/http"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/service"
	"github.com/wolfeidau/sitework/internal/store"
)

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	projects, err := s.services.Projects.List(r.Context(), store.ListProjectsOptions{
		Status: models.ProjectStatus(r.URL.Query().Get("status")),
		Limit:  limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, map[string]any{
		"projects": mapSlice(projects, toProject),
	})
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.services.Projects.Create(r.Context(), service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusCreated, toProject(project))
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.services.Projects.Get(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, toProject(project))
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req projectUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.services.Projects.Update(r.Context(), projectID, service.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		CompanyID:   req.CompanyID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, toProject(project))
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.services.Projects.Delete(r.Context(), projectID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	tasks, err := s.services.Tasks.ListByProject(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, map[string]any{
		"tasks": mapSlice(tasks, toTask),
	})
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := s.services.Tasks.Create(r.Context(), projectID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusCreated, toTask(task))
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r, "taskID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req taskUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := s.services.Tasks.Update(r.Context(), taskID, service.TaskUpdate{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
		DueDate:       req.DueDate,
		CompanyID:     req.CompanyID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, toTask(task))
}
