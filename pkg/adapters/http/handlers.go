package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/stepwise/pkg/compare"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/go-chi/chi/v5"
)

func (s *Server) listAlgorithms(w http.ResponseWriter, r *http.Request) {
	family := domain.Family(r.URL.Query().Get("family"))
	out := make([]registry.Entry, 0)
	for _, e := range s.Manager.Registry().List() {
		if family == "" || e.Supports(family) {
			out = append(out, e)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getAlgorithm(w http.ResponseWriter, r *http.Request) {
	e, err := s.Manager.Registry().Lookup(domain.Kind(chi.URLParam(r, "kind")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) getLearningCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.Deck.Card(s.Manager.Registry(), domain.Kind(chi.URLParam(r, "kind")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "text/markdown") {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		fmt.Fprint(w, card.Markdown())
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	var req compare.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", domain.ErrInvalidParams, err))
		return
	}
	rep, err := s.Comparer.Run(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) listPresets(w http.ResponseWriter, r *http.Request) {
	store := s.Manager.Presets()
	if store == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	names, err := store.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) getPreset(w http.ResponseWriter, r *http.Request) {
	store := s.Manager.Presets()
	if store == nil {
		writeError(w, r, domain.ErrPresetNotFound)
		return
	}
	p, err := store.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deletePreset(w http.ResponseWriter, r *http.Request) {
	store := s.Manager.Presets()
	if store == nil {
		writeError(w, r, domain.ErrPresetNotFound)
		return
	}
	if err := store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
