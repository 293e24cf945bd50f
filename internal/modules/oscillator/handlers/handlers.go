// Package handlers provides HTTP handlers for the oscillator animation.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/qho/internal/modules/animation"
	"github.com/aristath/qho/internal/modules/formula"
)

// Handler handles oscillator HTTP requests
type Handler struct {
	sampler *animation.Sampler
	driver  *animation.Driver
	stream  http.Handler
	log     zerolog.Logger
}

// NewHandler creates a new oscillator handler
func NewHandler(
	sampler *animation.Sampler,
	driver *animation.Driver,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		sampler: sampler,
		driver:  driver,
		log:     log.With().Str("handler", "oscillator").Logger(),
	}
}

// SetStreamHandler registers the frame stream served at /stream
func (h *Handler) SetStreamHandler(stream http.Handler) {
	h.stream = stream
}

// Coefficients decodes either the text form ("1,1+2j") or a JSON list whose
// elements are numbers or {"re": .., "im": ..} objects.
type Coefficients []complex128

// UnmarshalJSON implements json.Unmarshaler
func (c *Coefficients) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		parsed, err := animation.ParseCoefficients(text)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("coefficients must be a string or a list: %w", err)
	}
	out := make([]complex128, len(items))
	for i, item := range items {
		var re float64
		if err := json.Unmarshal(item, &re); err == nil {
			out[i] = complex(re, 0)
			continue
		}
		var pair struct {
			Re float64 `json:"re"`
			Im float64 `json:"im"`
		}
		if err := json.Unmarshal(item, &pair); err != nil {
			return fmt.Errorf("coefficient %d: must be a number or {re, im}", i)
		}
		out[i] = complex(pair.Re, pair.Im)
	}
	*c = out
	return nil
}

// ReconfigureRequest represents a full plot reconfiguration. Omitted fields
// keep their current value.
type ReconfigureRequest struct {
	LevelCount          *int         `json:"level_count"`
	XProportion         *float64     `json:"x_proportion"`
	SuperpositionYBound *float64     `json:"superposition_y_bound"`
	Coefficients        Coefficients `json:"coefficients"`
}

// CoefficientsRequest replaces the superposition state
type CoefficientsRequest struct {
	Coefficients Coefficients `json:"coefficients"`
}

// LayerRequest switches one display layer
type LayerRequest struct {
	Layer   string `json:"layer"`
	Visible bool   `json:"visible"`
}

// FormulaRequest generates a coefficient sequence from a formula
type FormulaRequest struct {
	Formula  string `json:"formula"`
	Variable string `json:"variable"`
	From     int    `json:"from"`
	To       int    `json:"to"`
	Apply    bool   `json:"apply"`
}

// HandleGetState handles GET /api/oscillator/state
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"state":  h.sampler.Snapshot(),
		"driver": h.driver.Stats(),
	})
}

// HandleReconfigure handles POST /api/oscillator/reconfigure
func (h *Handler) HandleReconfigure(w http.ResponseWriter, r *http.Request) {
	var req ReconfigureRequest
	if !h.decode(w, r, &req) {
		return
	}

	snap := h.sampler.Snapshot()
	p := snap.Params
	if !snap.Configured {
		p = animation.DefaultParams()
	}
	if req.LevelCount != nil {
		p.LevelCount = *req.LevelCount
	}
	if req.XProportion != nil {
		p.XProportion = *req.XProportion
	}
	if req.SuperpositionYBound != nil {
		p.SuperpositionYBound = *req.SuperpositionYBound
	}
	if req.Coefficients != nil {
		p.Coefficients = req.Coefficients
	}

	if err := h.sampler.Reconfigure(p); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.driver.Restart(); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"state":  h.sampler.Snapshot(),
		"driver": h.driver.Stats(),
	})
}

// HandleUpdateCoefficients handles POST /api/oscillator/coefficients
func (h *Handler) HandleUpdateCoefficients(w http.ResponseWriter, r *http.Request) {
	var req CoefficientsRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.sampler.UpdateCoefficients(req.Coefficients); err != nil {
		h.writeError(w, err)
		return
	}

	snap := h.sampler.Snapshot()
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"coefficients": snap.Coefficients,
		"observables":  snap.Observables,
	})
}

// HandleToggleLayer handles POST /api/oscillator/layers
func (h *Handler) HandleToggleLayer(w http.ResponseWriter, r *http.Request) {
	var req LayerRequest
	if !h.decode(w, r, &req) {
		return
	}

	layer, err := animation.ParseLayer(req.Layer)
	if err != nil {
		h.writeError(w, err)
		return
	}

	refresh := h.sampler.ToggleLayer(layer, req.Visible)
	if err := h.driver.Apply(refresh); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"layers":  h.sampler.Layers(),
		"refresh": refresh.String(),
	})
}

// HandleGetFrame handles GET /api/oscillator/frames/{index}
func (h *Handler) HandleGetFrame(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		h.writeError(w, &animation.ValidationError{Field: "frame", Value: raw, Err: animation.ErrInvalidFrame})
		return
	}

	frame, err := h.sampler.SampleFrame(index)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, frame)
}

// HandleGenerateFormula handles POST /api/oscillator/formula
func (h *Handler) HandleGenerateFormula(w http.ResponseWriter, r *http.Request) {
	var req FormulaRequest
	if !h.decode(w, r, &req) {
		return
	}

	seq, err := formula.Generate(req.Formula, req.Variable, req.From, req.To)
	if err != nil {
		h.writeError(w, err)
		return
	}

	coefficients := animation.RealCoefficients(seq)
	if req.Apply {
		if err := h.sampler.UpdateCoefficients(coefficients); err != nil {
			h.writeError(w, err)
			return
		}
		h.log.Info().
			Str("formula", req.Formula).
			Int("count", len(seq)).
			Msg("Applied generated superposition")
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"sequence":     seq,
		"coefficients": animation.FormatCoefficients(coefficients),
		"applied":      req.Apply,
	})
}

// HandleStartAnimation handles POST /api/oscillator/animation/start
func (h *Handler) HandleStartAnimation(w http.ResponseWriter, r *http.Request) {
	if err := h.driver.Start(); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, h.driver.Stats())
}

// HandleStopAnimation handles POST /api/oscillator/animation/stop
func (h *Handler) HandleStopAnimation(w http.ResponseWriter, r *http.Request) {
	h.driver.Stop()
	h.writeData(w, http.StatusOK, h.driver.Stats())
}

// HandleResetAnimation handles POST /api/oscillator/animation/reset
func (h *Handler) HandleResetAnimation(w http.ResponseWriter, r *http.Request) {
	h.sampler.ResetClock()
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"frame": h.sampler.Snapshot().Frame,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode request body")
		if animation.IsValidation(err) {
			h.writeError(w, err)
		} else {
			h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Invalid request body: " + err.Error()})
		}
		return false
	}
	return true
}

// writeData wraps data in the standard envelope
func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeError maps an error to a status code
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var formulaErr *formula.ValidationError
	status := http.StatusInternalServerError
	switch {
	case animation.IsValidation(err), errors.As(err, &formulaErr):
		status = http.StatusBadRequest
	case errors.Is(err, animation.ErrNotConfigured):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Request failed")
	}
	h.writeJSON(w, status, map[string]interface{}{"error": err.Error()})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
