package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all oscillator routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/oscillator", func(r chi.Router) {
		r.Get("/state", h.HandleGetState)
		r.Post("/reconfigure", h.HandleReconfigure)
		r.Post("/coefficients", h.HandleUpdateCoefficients)
		r.Post("/layers", h.HandleToggleLayer)
		r.Get("/frames/{index}", h.HandleGetFrame)
		r.Post("/formula", h.HandleGenerateFormula)
		if h.stream != nil {
			r.Get("/stream", h.stream.ServeHTTP)
		}

		r.Route("/animation", func(r chi.Router) {
			r.Post("/start", h.HandleStartAnimation)
			r.Post("/stop", h.HandleStopAnimation)
			r.Post("/reset", h.HandleResetAnimation)
		})
	})
}
