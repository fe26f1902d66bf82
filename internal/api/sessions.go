package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/eugenenazirov/chargeable-weight/internal/calculator"
	"github.com/eugenenazirov/chargeable-weight/internal/storage"
)

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	if req.TotalBoxCount > h.maxBoxes {
		writeError(w, http.StatusBadRequest, "Too many boxes", fmt.Sprintf("totalBoxCount must not exceed %d", h.maxBoxes))
		return
	}

	cfg, err := resolveSelections(h.defaults, req.selectionRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid selection", err.Error())
		return
	}
	cfg.TotalBoxCount = req.TotalBoxCount

	id, snap, err := h.storage.Create(cfg)
	if err != nil {
		if errors.Is(err, storage.ErrCapacityExceeded) {
			writeError(w, http.StatusServiceUnavailable, "Too many sessions", err.Error(), "Retry after idle sessions expire")
			return
		}
		writeInternalError(w, err)
		return
	}
	h.observeSessions()

	resp := toShipmentResponse(snap)
	resp.SessionID = id.String()
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.storage.Get(id)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeSession(w, id, snap, nil)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.storage.Delete(id); err != nil {
		writeStorageError(w, err)
		return
	}
	h.observeSessions()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	// Parse everything up front so a bad selection leaves the session untouched.
	var (
		mode          *calculator.ShippingMode
		weightUnit    *calculator.WeightUnit
		dimensionUnit *calculator.DimensionUnit
	)
	if req.ShippingMode != "" {
		m, err := calculator.ParseShippingMode(req.ShippingMode)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid selection", err.Error())
			return
		}
		mode = &m
	}
	if req.WeightUnit != "" {
		u, err := calculator.ParseWeightUnit(req.WeightUnit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid selection", err.Error())
			return
		}
		weightUnit = &u
	}
	if req.DimensionUnit != "" {
		u, err := calculator.ParseDimensionUnit(req.DimensionUnit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid selection", err.Error())
			return
		}
		dimensionUnit = &u
	}

	snap, err := h.storage.Update(id, func(s *calculator.Session) {
		if mode != nil {
			s.SetShippingMode(*mode)
		}
		if weightUnit != nil {
			s.SetWeightUnit(*weightUnit)
		}
		if dimensionUnit != nil {
			s.SetDimensionUnit(*dimensionUnit)
		}
	})
	if err != nil {
		writeStorageError(w, err)
		return
	}
	h.recordMutation("config")
	writeSession(w, id, snap, nil)
}

func (h *Handler) handleBoxCount(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req boxCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	raw := strings.TrimSpace(string(req.TotalBoxCount))
	if n, err := strconv.Atoi(raw); err == nil && n > h.maxBoxes {
		writeError(w, http.StatusBadRequest, "Too many boxes", fmt.Sprintf("totalBoxCount must not exceed %d", h.maxBoxes))
		return
	}

	snap, err := h.storage.Update(id, func(s *calculator.Session) {
		s.FinalizeBoxCount(raw)
	})
	if err != nil {
		writeStorageError(w, err)
		return
	}
	h.recordMutation("box_count")
	writeSession(w, id, snap, nil)
}

func (h *Handler) handlePatchRow(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "Invalid row index", "row index must be a non-negative integer")
		return
	}
	var req rowPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	var (
		rejected []string
		missing  bool
	)
	snap, err := h.storage.Update(id, func(s *calculator.Session) {
		if index >= s.RowCount() {
			missing = true
			return
		}
		for _, m := range req.measurements() {
			if m.raw == nil {
				continue
			}
			if !s.SetMeasurement(index, m.field, string(*m.raw)) {
				rejected = append(rejected, m.field.String())
			}
		}
		if req.Quantity != nil {
			s.SetQuantity(index, *req.Quantity)
		}
	})
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if missing {
		writeError(w, http.StatusNotFound, "Row not found", fmt.Sprintf("shipment has %d rows", len(snap.Rows)))
		return
	}

	h.recordMutation("row")
	if h.metrics != nil {
		for _, field := range rejected {
			h.metrics.RecordRejectedInput(field)
		}
	}
	writeSession(w, id, snap, rejected)
}

func (h *Handler) recordMutation(kind string) {
	if h.metrics != nil {
		h.metrics.RecordMutation(kind)
	}
}

func (h *Handler) observeSessions() {
	if h.metrics != nil {
		h.metrics.SetActiveSessions(h.storage.Len())
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found", "session id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func writeSession(w http.ResponseWriter, id uuid.UUID, snap calculator.Result, rejected []string) {
	resp := toShipmentResponse(snap)
	resp.SessionID = id.String()
	resp.Rejected = rejected
	writeJSON(w, http.StatusOK, resp)
}

func writeStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "Session not found", err.Error(), "Create a new session with POST /api/sessions")
		return
	}
	writeInternalError(w, err)
}
