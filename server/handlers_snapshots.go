package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfld/folioplan"
	"github.com/mfld/folioplan/date"
	"github.com/mfld/folioplan/logger"
	"github.com/mfld/folioplan/store"
)

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ListSnapshotSummaries(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cannot list snapshots", "error", err)
		sendJSONError(w, "failed to retrieve snapshots", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	m, err := date.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap, err := s.store.GetSnapshot(r.Context(), m)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendJSONError(w, "snapshot not found", http.StatusNotFound)
			return
		}
		sendJSONError(w, "failed to retrieve snapshot", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// recordInput is one asset's entry in a snapshot write: the period's flow in
// buy/sell convenience form plus the observed unit price. The engine only
// works with signed deltas, so the direction is resolved here.
type recordInput struct {
	AssetID   string          `json:"assetId"`
	Direction string          `json:"direction"` // "buy", "sell" or "" for signed deltas
	Quantity  decimal.Decimal `json:"quantity"`
	Principal decimal.Decimal `json:"principal"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type snapshotInput struct {
	Month   string        `json:"month"`
	Note    string        `json:"note"`
	Records []recordInput `json:"records"`
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var in snapshotInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		sendJSONError(w, "invalid body", http.StatusBadRequest)
		return
	}
	m, err := date.ParseMonth(in.Month)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	assets, err := s.store.ListAssets(ctx)
	if err != nil {
		sendJSONError(w, "failed to retrieve assets", http.StatusInternalServerError)
		return
	}
	assetByID := make(map[string]folioplan.Asset, len(assets))
	for _, a := range assets {
		assetByID[a.ID] = a
	}
	history, err := s.store.ListSnapshots(ctx)
	if err != nil {
		sendJSONError(w, "failed to retrieve history", http.StatusInternalServerError)
		return
	}

	snap := &folioplan.Snapshot{Month: m, Note: in.Note}
	if existing, err := s.store.GetSnapshot(ctx, m); err == nil {
		snap.ID = existing.ID // editing an existing month keeps its identity
	} else {
		snap.ID = uuid.New().String()
	}

	for _, rec := range in.Records {
		asset, ok := assetByID[rec.AssetID]
		if !ok {
			sendJSONError(w, fmt.Sprintf("unknown asset %q", rec.AssetID), http.StatusBadRequest)
			return
		}
		flow, err := folioplan.NewFlow(rec.Direction, folioplan.Q(rec.Quantity), folioplan.A(rec.Principal, s.currency))
		if err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		price := folioplan.A(rec.UnitPrice, s.currency)
		snap.Records = append(snap.Records, folioplan.ReplayRecord(history, m, asset, price, flow))
	}

	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		logger.FromContext(ctx).Error("cannot save snapshot", "month", m, "error", err)
		sendJSONError(w, "failed to save snapshot", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	m, err := date.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.store.DeleteSnapshot(r.Context(), m); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendJSONError(w, "snapshot not found", http.StatusNotFound)
			return
		}
		sendJSONError(w, "failed to delete snapshot", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
