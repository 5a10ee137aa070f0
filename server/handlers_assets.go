package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mfld/folioplan"
	"github.com/mfld/folioplan/logger"
	"github.com/mfld/folioplan/store"
)

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.store.ListAssets(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cannot list assets", "error", err)
		sendJSONError(w, "failed to retrieve assets", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) handleSaveAsset(w http.ResponseWriter, r *http.Request) {
	var a folioplan.Asset
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		sendJSONError(w, "invalid body", http.StatusBadRequest)
		return
	}
	// the URL is authoritative for the id
	a.ID = chi.URLParam(r, "id")
	if err := s.store.SaveAsset(r.Context(), a); err != nil {
		logger.FromContext(r.Context()).Error("cannot save asset", "assetID", a.ID, "error", err)
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteAsset(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendJSONError(w, "asset not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("cannot delete asset", "assetID", id, "error", err)
		sendJSONError(w, "failed to delete asset", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
