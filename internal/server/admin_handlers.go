package server

import (
	"net/http"

	httpmiddleware "github.com/wolfeidau/sitework/internal/http"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/service"
	"github.com/wolfeidau/sitework/internal/store"
)

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	users, err := s.services.Users.List(r.Context(), store.ListUsersOptions{
		Role:       models.Role(q.Get("role")),
		ActiveOnly: q.Get("active") == "true",
		Limit:      limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, map[string]any{
		"users": mapSlice(users, toUser),
	})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.services.Users.Create(r.Context(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusCreated, toUser(user))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req userUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.services.Users.Update(r.Context(), userID, service.UserUpdate{
		Name:      req.Name,
		Role:      req.Role,
		IsActive:  req.IsActive,
		CompanyID: req.CompanyID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, toUser(user))
}

func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	companies, err := s.services.Companies.List(r.Context(), store.ListCompaniesOptions{
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Limit:      limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, map[string]any{
		"companies": mapSlice(companies, toCompany),
	})
}

func (s *Server) createCompany(w http.ResponseWriter, r *http.Request) {
	var req companyCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	company, owner, err := s.services.Companies.Provision(r.Context(), service.ProvisionInput{
		CompanyName:   req.Name,
		OwnerName:     req.OwnerName,
		OwnerEmail:    req.OwnerEmail,
		OwnerPassword: req.OwnerPassword,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusCreated, provisionResponse{
		Company: toCompany(company),
		Owner:   toUser(owner),
	})
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	company, err := s.services.Companies.Get(r.Context(), companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, toCompany(company))
}

func (s *Server) updateCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req companyUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	company, err := s.services.Companies.Update(r.Context(), companyID, service.CompanyUpdate{
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, toCompany(company))
}
