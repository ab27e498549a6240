package server

import (
	"net/http"

	httpmiddleware "github.com/wolfeidau/sitework/internal/http"
	"github.com/wolfeidau/sitework/internal/service"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.services.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, toSession(session))
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.services.Accounts.Register(r.Context(), service.RegisterInput{
		CompanyName: req.CompanyName,
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusCreated, toSession(session))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.services.Accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, toSession(session))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.services.Accounts.Logout(r.Context(), req.RefreshToken, req.All); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, company, err := s.services.Accounts.Me(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, meResponse{
		User:    toUser(user),
		Company: toCompany(company),
	})
}
