package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/mfld/folioplan"
	"github.com/mfld/folioplan/date"
	"github.com/mfld/folioplan/logger"
	"github.com/mfld/folioplan/store"
)

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	versions, err := s.store.ListPolicyVersions(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cannot list policy versions", "error", err)
		sendJSONError(w, "failed to retrieve policy versions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.GetPolicyVersion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendJSONError(w, "policy version not found", http.StatusNotFound)
			return
		}
		sendJSONError(w, "failed to retrieve policy version", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleGetPolicyRationale renders the version's markdown rationale to HTML.
func (s *Server) handleGetPolicyRationale(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.GetPolicyVersion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendJSONError(w, "policy version not found", http.StatusNotFound)
			return
		}
		sendJSONError(w, "failed to retrieve policy version", http.StatusInternalServerError)
		return
	}
	var html bytes.Buffer
	if err := goldmark.Convert([]byte(v.Rationale), &html); err != nil {
		logger.FromContext(r.Context()).Error("cannot render rationale", "versionID", v.ID, "error", err)
		sendJSONError(w, "failed to render rationale", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html.Bytes())
}

func (s *Server) handleSavePolicy(w http.ResponseWriter, r *http.Request) {
	var v folioplan.PolicyVersion
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		sendJSONError(w, "invalid body", http.StatusBadRequest)
		return
	}
	v.ID = chi.URLParam(r, "id")
	if v.Status == "" {
		v.Status = folioplan.StatusActive
	}
	// missing layer/target ids are minted here so clients can post new rows
	for i := range v.Layers {
		if v.Layers[i].ID == "" {
			v.Layers[i].ID = uuid.New().String()
		}
		for j := range v.Layers[i].Targets {
			if v.Layers[i].Targets[j].ID == "" {
				v.Layers[i].Targets[j].ID = uuid.New().String()
			}
		}
	}
	if err := s.store.SavePolicyVersion(r.Context(), &v); err != nil {
		if errors.Is(err, store.ErrDuplicateTarget) {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.FromContext(r.Context()).Error("cannot save policy version", "versionID", v.ID, "error", err)
		sendJSONError(w, "failed to save policy version", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, &v)
}

// handleClonePolicy deep-copies a version into a new active one and archives
// the original.
func (s *Server) handleClonePolicy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		StartDate string `json:"startDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "invalid body", http.StatusBadRequest)
		return
	}
	start, err := date.Parse(req.StartDate)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	orig, err := s.store.GetPolicyVersion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendJSONError(w, "policy version not found", http.StatusNotFound)
			return
		}
		sendJSONError(w, "failed to retrieve policy version", http.StatusInternalServerError)
		return
	}

	clone := orig.Clone(uuid.New().String(), req.Name, start)
	// fresh ids: the clone's layers and targets are new rows, not shared ones
	for i := range clone.Layers {
		clone.Layers[i].ID = uuid.New().String()
		for j := range clone.Layers[i].Targets {
			clone.Layers[i].Targets[j].ID = uuid.New().String()
		}
	}
	if err := s.store.SavePolicyVersion(r.Context(), clone); err != nil {
		logger.FromContext(r.Context()).Error("cannot save cloned version", "error", err)
		sendJSONError(w, "failed to save cloned version", http.StatusInternalServerError)
		return
	}
	orig.Status = folioplan.StatusArchived
	if err := s.store.SavePolicyVersion(r.Context(), orig); err != nil {
		logger.FromContext(r.Context()).Error("cannot archive predecessor", "versionID", orig.ID, "error", err)
		sendJSONError(w, "failed to archive predecessor", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, clone)
}

func (s *Server) handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePolicyVersion(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendJSONError(w, "policy version not found", http.StatusNotFound)
			return
		}
		sendJSONError(w, "failed to delete policy version", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
