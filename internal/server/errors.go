package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/sitework/internal/auth"
	httpmiddleware "github.com/wolfeidau/sitework/internal/http"
	"github.com/wolfeidau/sitework/internal/service"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/tenant"
)

const maxBodyBytes = 1 << 20

// statusFor classifies an error returned by the services into an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredential),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrInvalidLogin):
		return http.StatusUnauthorized

	case errors.Is(err, auth.ErrInsufficientRole),
		errors.Is(err, auth.ErrForbiddenScope),
		errors.Is(err, auth.ErrRootRequired),
		errors.Is(err, service.ErrRoleEscalation),
		errors.Is(err, tenant.ErrCrossTenantWrite),
		errors.Is(err, tenant.ErrNoTenantScope):
		return http.StatusForbidden

	case errors.Is(err, tenant.ErrOwnershipChange),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrRootCompanyProtected),
		errors.Is(err, store.ErrAlreadyExists):
		return http.StatusConflict

	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, auth.ErrUnknownTenant):
		return http.StatusNotFound

	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, auth.ErrInvalidTarget),
		errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrNotBootstrapped):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// writeError writes the problem response for err. Server errors are logged and their
// detail withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		httpmiddleware.WriteProblem(w, status, "internal error")
		return
	}

	zerolog.Ctx(r.Context()).Debug().Err(err).Int("status", status).Msg("Request rejected")
	httpmiddleware.WriteProblem(w, status, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", service.ErrInvalidInput, err)
	}
	return nil
}

func pathID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a uuid", service.ErrInvalidInput, param)
	}
	return id, nil
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", service.ErrInvalidInput)
	}
	return n, nil
}
