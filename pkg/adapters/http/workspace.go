package http

import (
	"fmt"
	"net/http"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/aretw0/stepwise/pkg/session"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/go-chi/chi/v5"
)

// StartRequest selects the algorithm to run.
type StartRequest struct {
	Kind   domain.Kind    `json:"kind" validate:"required"`
	Params map[string]any `json:"params,omitempty"`
}

// GenerateRequest asks for a seeded input suited to Kind.
type GenerateRequest struct {
	Kind   domain.Kind    `json:"kind" validate:"required"`
	Size   int            `json:"size,omitempty" validate:"omitempty,min=1,max=1000"`
	Params map[string]any `json:"params,omitempty"`
}

// PlayRequest is a human tic-tac-toe move.
type PlayRequest struct {
	Cell *int `json:"cell" validate:"required,min=0,max=8"`
}

// WorkspaceView is a workspace with its current update.
type WorkspaceView struct {
	session.Info
	Speed  int            `json:"speed_ms"`
	Params map[string]any `json:"params,omitempty"`
	runner.Update
}

func view(ws *session.Workspace) WorkspaceView {
	_, params := ws.Selection()
	return WorkspaceView{
		Info:   ws.Info(),
		Speed:  ws.Runner().Speed(),
		Params: params,
		Update: snapshot(ws),
	}
}

// snapshot is the runner view with the frame of the workspace container,
// which may have been replaced since the last run.
func snapshot(ws *session.Workspace) runner.Update {
	u := ws.Runner().View()
	if c := ws.Container(); c != nil {
		u.Frame = c.Frame()
	}
	return u
}

func (s *Server) workspace(w http.ResponseWriter, r *http.Request) (*session.Workspace, bool) {
	ws, err := s.Manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return ws, true
}

// decode reads a JSON body into v and checks its validate tags.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(r, v); err != nil {
		writeError(w, r, err)
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", domain.ErrInvalidParams, err))
		return false
	}
	return true
}

func (s *Server) listWorkspaces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Manager.List())
}

func (s *Server) createWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := s.Manager.Create(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/workspaces/"+ws.ID)
	writeJSON(w, http.StatusCreated, view(ws))
}

func (s *Server) getWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view(ws))
}

func (s *Server) deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.Manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setContainer(w http.ResponseWriter, r *http.Request) {
	var spec viz.Spec
	if !s.decode(w, r, &spec) {
		return
	}
	c, err := s.Manager.SetContainer(r.Context(), chi.URLParam(r, "id"), spec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Frame())
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, params, err := s.Manager.Generate(r.Context(), chi.URLParam(r, "id"), req.Kind, req.Params, req.Size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"frame": c.Frame(), "params": params})
}

func (s *Server) start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if !s.decode(w, r, &req) {
		return
	}
	st, err := s.Manager.Start(r.Context(), chi.URLParam(r, "id"), req.Kind, req.Params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, st)
}

func (s *Server) command(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	var cmd runner.Command
	if !s.decode(w, r, &cmd) {
		return
	}
	if err := runner.Dispatch(r.Context(), ws.Runner(), cmd); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws.Runner().State())
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request) {
	var e session.Edit
	if !s.decode(w, r, &e) {
		return
	}
	frame, err := s.Manager.Edit(r.Context(), chi.URLParam(r, "id"), e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) play(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if !s.decode(w, r, &req) {
		return
	}
	mv, err := s.Manager.Play(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, mv)
}

func (s *Server) savePreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.Manager.SavePreset(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) loadPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.Manager.LoadPreset(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
