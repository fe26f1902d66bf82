package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eugenenazirov/chargeable-weight/internal/calculator"
	"github.com/eugenenazirov/chargeable-weight/internal/metrics"
	"github.com/eugenenazirov/chargeable-weight/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const defaultMaxBoxes = 1000

// Handler wires calculator, session storage and metrics into HTTP handlers.
type Handler struct {
	calculator calculator.Calculator
	storage    storage.Storage
	metrics    *metrics.Metrics
	validate   *validator.Validate

	defaults calculator.Config
	maxBoxes int
	clock    func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMetrics enables Prometheus instrumentation and the /metrics route.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithDefaults sets the selections used when a request omits them.
func WithDefaults(cfg calculator.Config) HandlerOption {
	return func(h *Handler) {
		h.defaults = cfg
	}
}

// WithMaxBoxes caps the declared box count a request may ask for.
func WithMaxBoxes(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxBoxes = n
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(calc calculator.Calculator, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		calculator: calc,
		storage:    store,
		validate:   newValidator(),
		defaults:   calculator.DefaultConfig(),
		maxBoxes:   defaultMaxBoxes,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
		Sessions:  h.storage.Len(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleModes(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, buildModesResponse())
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.countRejectedFields(err)
		writeValidationError(w, err)
		return
	}

	cfg, err := resolveSelections(h.defaults, selectionRequest{
		ShippingMode:  req.ShippingMode,
		WeightUnit:    req.WeightUnit,
		DimensionUnit: req.DimensionUnit,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid selection", err.Error())
		return
	}

	rows := make([]calculator.BoxRow, 0, len(req.Rows))
	for _, rr := range req.Rows {
		row, err := toBoxRow(rr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid measurement", err.Error())
			return
		}
		rows = append(rows, row)
	}

	cfg.TotalBoxCount = req.TotalBoxCount
	withinLimit := true
	if cfg.TotalBoxCount == 0 && len(rows) > 0 {
		cfg.TotalBoxCount, withinLimit = declaredBoxes(rows, h.maxBoxes)
	}
	if !withinLimit || cfg.TotalBoxCount > h.maxBoxes {
		writeError(w, http.StatusBadRequest, "Too many boxes",
			fmt.Sprintf("totalBoxCount must not exceed %d", h.maxBoxes),
			"Split the shipment into several bookings")
		return
	}

	result := h.calculator.Calculate(cfg, rows)
	if h.metrics != nil {
		h.metrics.RecordCalculation(cfg.ShippingMode.String())
	}
	writeJSON(w, http.StatusOK, toShipmentResponse(result))
}

func (h *Handler) countRejectedFields(err error) {
	if h.metrics == nil {
		return
	}
	for field := range validationFields(err) {
		h.metrics.RecordRejectedInput(field)
	}
}

// resolveSelections overlays the non-empty request selections on base.
func resolveSelections(base calculator.Config, sel selectionRequest) (calculator.Config, error) {
	cfg := base
	if sel.ShippingMode != "" {
		m, err := calculator.ParseShippingMode(sel.ShippingMode)
		if err != nil {
			return calculator.Config{}, err
		}
		cfg.ShippingMode = m
	}
	if sel.WeightUnit != "" {
		u, err := calculator.ParseWeightUnit(sel.WeightUnit)
		if err != nil {
			return calculator.Config{}, err
		}
		cfg.WeightUnit = u
	}
	if sel.DimensionUnit != "" {
		u, err := calculator.ParseDimensionUnit(sel.DimensionUnit)
		if err != nil {
			return calculator.Config{}, err
		}
		cfg.DimensionUnit = u
	}
	return cfg, nil
}

func toBoxRow(rr rowRequest) (calculator.BoxRow, error) {
	row := calculator.BoxRow{Quantity: rr.Quantity}

	var err error
	if row.Weight, err = calculator.ParseMeasure(string(rr.Weight)); err != nil {
		return row, fmt.Errorf("weight: %w", err)
	}
	if row.Length, err = calculator.ParseMeasure(string(rr.Length)); err != nil {
		return row, fmt.Errorf("length: %w", err)
	}
	if row.Breadth, err = calculator.ParseMeasure(string(rr.Breadth)); err != nil {
		return row, fmt.Errorf("breadth: %w", err)
	}
	if row.Height, err = calculator.ParseMeasure(string(rr.Height)); err != nil {
		return row, fmt.Errorf("height: %w", err)
	}
	return row, nil
}

// declaredBoxes is the box count implied by the rows when the caller omits it.
// It stops summing once limit is exceeded and reports false.
func declaredBoxes(rows []calculator.BoxRow, limit int) (int, bool) {
	total := 0
	for _, row := range rows {
		qty := max(row.Quantity, 1)
		if qty > limit-total {
			return 0, false
		}
		total += qty
	}
	return total, true
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeValidationError(w http.ResponseWriter, err error) {
	fields := validationFields(err)
	if fields == nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:  "Validation failed",
		Fields: fields,
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
