// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/locflow/internal/cache"
	"github.com/ManuGH/locflow/internal/domain/workflow/manager"
	"github.com/ManuGH/locflow/internal/domain/workflow/model"
	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
	"github.com/ManuGH/locflow/internal/i18n"
	xglog "github.com/ManuGH/locflow/internal/log"
)

type sessionResponse struct {
	ID    string      `json:"id"`
	State model.State `json:"state"`
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Catalog.List(r.Context()))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, ctrl, err := s.deps.Registry.Create()
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, State: ctrl.Snapshot()})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Registry.List())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, nil)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Registry.Remove(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleCountry(w http.ResponseWriter, r *http.Request) {
	country, ok := s.deps.Catalog.Lookup(r.Context(), chi.URLParam(r, "code"))
	if !ok {
		writeProblem(w, http.StatusNotFound, "unknown_country", "country "+chi.URLParam(r, "code")+" is not selectable")
		return
	}
	s.withSession(w, r, func(c *manager.Controller) error {
		return c.SelectCountry(country)
	})
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, (*manager.Controller).Continue)
}

func (s *Server) handleStartLocalization(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, (*manager.Controller).StartLocalization)
}

func (s *Server) handleConfirmLocalization(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, (*manager.Controller).ConfirmLocalization)
}

type campaignsRequest struct {
	Objective string `json:"objective"`
}

func (s *Server) handleGenerateCampaigns(w http.ResponseWriter, r *http.Request) {
	var req campaignsRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeProblem(w, http.StatusBadRequest, "invalid_body", err.Error())
			return
		}
	}
	s.withSession(w, r, func(c *manager.Controller) error {
		return c.GenerateCampaigns(r.Context(), strings.TrimSpace(req.Objective))
	})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	step, err := model.ParseStep(chi.URLParam(r, "step"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_step", err.Error())
		return
	}
	s.withSession(w, r, func(c *manager.Controller) error {
		return c.Navigate(step)
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctrl, id, ok := s.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.deps.MaxUploadBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeProblem(w, http.StatusRequestEntityTooLarge, string(model.ErrorUploadTooLarge),
				s.printer.Sprintf(i18n.UploadTooLarge, s.deps.MaxUploadBytes>>20))
			return
		}
		writeProblem(w, http.StatusBadRequest, "invalid_upload", err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	up := manager.Upload{Description: r.FormValue("description")}
	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Submit reports the missing video in the session's language.
	case err != nil:
		writeProblem(w, http.StatusBadRequest, "invalid_upload", err.Error())
		return
	default:
		defer func() { _ = file.Close() }()
		up.Filename = header.Filename
		up.Size = header.Size
		up.ContentType = header.Header.Get("Content-Type")
		up.Body = file
	}

	ctx := xglog.ContextWithSessionID(r.Context(), id)
	err = ctrl.Submit(ctx, up)
	st := ctrl.Snapshot()
	if err != nil {
		writeError(w, r, err, &st)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: st})
}

// session resolves the {id} path parameter, writing 404 when unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*manager.Controller, string, bool) {
	id := chi.URLParam(r, "id")
	ctrl, err := s.deps.Registry.Get(id)
	if err != nil {
		writeError(w, r, err, nil)
		return nil, id, false
	}
	return ctrl, id, true
}

// withSession runs op against the session and answers with its state.
// A nil op only reads the state.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, op func(*manager.Controller) error) {
	ctrl, id, ok := s.session(w, r)
	if !ok {
		return
	}
	if op != nil {
		if err := op(ctrl); err != nil {
			st := ctrl.Snapshot()
			writeError(w, r, err, &st)
			return
		}
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: ctrl.Snapshot()})
}

type loginRequest struct {
	Token string     `json:"token"`
	User  cache.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeProblem(w, http.StatusBadRequest, "invalid_body", "token is required")
		return
	}
	if err := s.deps.Auth.Login(r.Context(), req.Token, req.User); err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, req.User)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Auth.Logout(r.Context()); err != nil {
		writeError(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.deps.Auth.User(r.Context())
	if errors.Is(err, ports.ErrKeyNotFound) {
		writeProblem(w, http.StatusNotFound, "not_signed_in", "no user is signed in")
		return
	}
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
