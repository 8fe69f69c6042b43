package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/technosupport/ts-dvr-gateway/internal/data"
)

type serverRequest struct {
	Name      string `json:"name"`
	BaseURL   string `json:"base_url"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	IsEnabled bool   `json:"is_enabled"`
}

func (a *API) handleCreateServer(w http.ResponseWriter, r *http.Request) {
	var req serverRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.BaseURL == "" {
		errorResponse(w, http.StatusBadRequest, "name and base_url are required")
		return
	}

	server := &data.Server{
		Name:      req.Name,
		BaseURL:   req.BaseURL,
		Username:  req.Username,
		Password:  req.Password,
		IsEnabled: req.IsEnabled,
	}
	if err := a.Servers.Create(r.Context(), server); err != nil {
		if errors.Is(err, data.ErrDuplicateName) {
			errorResponse(w, http.StatusConflict, "a server with that name already exists")
			return
		}
		serverErrorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{"server": server})
}

func (a *API) handleListServers(w http.ResponseWriter, r *http.Request) {
	enabledOnly := r.URL.Query().Get("enabled") == "true"

	servers, err := a.Servers.List(r.Context(), enabledOnly)
	if err != nil {
		serverErrorResponse(w, err)
		return
	}
	if servers == nil {
		servers = []*data.Server{}
	}
	writeJSON(w, http.StatusOK, envelope{"servers": servers})
}

func (a *API) handleGetServer(w http.ResponseWriter, r *http.Request) {
	id, ok := serverIDParam(w, r)
	if !ok {
		return
	}

	server, err := a.Servers.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			errorResponse(w, http.StatusNotFound, "server not found")
			return
		}
		serverErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"server": server})
}

func (a *API) handleUpdateServer(w http.ResponseWriter, r *http.Request) {
	id, ok := serverIDParam(w, r)
	if !ok {
		return
	}

	existing, err := a.Servers.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			errorResponse(w, http.StatusNotFound, "server not found")
			return
		}
		serverErrorResponse(w, err)
		return
	}

	var req serverRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.BaseURL == "" {
		errorResponse(w, http.StatusBadRequest, "name and base_url are required")
		return
	}

	existing.Name = req.Name
	existing.BaseURL = req.BaseURL
	existing.Username = req.Username
	if req.Password != "" {
		existing.Password = req.Password
	}
	existing.IsEnabled = req.IsEnabled

	if err := a.Servers.Update(r.Context(), existing); err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			errorResponse(w, http.StatusNotFound, "server not found")
			return
		}
		serverErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"server": existing})
}

func (a *API) handleSetServerEnabled(w http.ResponseWriter, r *http.Request) {
	id, ok := serverIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.Servers.SetEnabled(r.Context(), id, req.Enabled); err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			errorResponse(w, http.StatusNotFound, "server not found")
			return
		}
		serverErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"id": id, "is_enabled": req.Enabled})
}

func (a *API) handleDeleteServer(w http.ResponseWriter, r *http.Request) {
	id, ok := serverIDParam(w, r)
	if !ok {
		return
	}

	if err := a.Servers.Delete(r.Context(), id); err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			errorResponse(w, http.StatusNotFound, "server not found")
			return
		}
		serverErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func serverIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid server id")
		return uuid.Nil, false
	}
	return id, true
}
