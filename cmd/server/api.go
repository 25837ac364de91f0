package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/exportquote/internal/calculator"
	"github.com/Simplici0/exportquote/internal/distance"
	"github.com/Simplici0/exportquote/internal/history"
	"github.com/Simplici0/exportquote/internal/packing"
	"github.com/Simplici0/exportquote/internal/pricing"
)

type packingRequest struct {
	Box calculator.BoxSpec `json:"box"`
	// ContainerCode selects a stored container type; Container gives custom dimensions instead.
	ContainerCode string             `json:"container_code"`
	Container     *packing.Container `json:"container,omitempty"`

	TotalQuantity  calculator.Numeric `json:"total_quantity"`
	PerBoxQuantity calculator.Numeric `json:"per_box_quantity"`
}

type packingResponse struct {
	Result   packing.Result    `json:"result"`
	Shipment *packing.Shipment `json:"shipment,omitempty"`
}

func (s *server) handlePacking(w http.ResponseWriter, r *http.Request) {
	var req packingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var container packing.Container
	switch {
	case req.Container != nil:
		container = *req.Container
	case strings.TrimSpace(req.ContainerCode) != "":
		ct, err := s.masterData.GetContainerTypeByCode(r.Context(), req.ContainerCode)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		container = ct.Container()
	default:
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "container_code or container is required")
		return
	}

	box := packing.Box{
		Length:   req.Box.Length.Float(),
		Width:    req.Box.Width.Float(),
		Height:   req.Box.Height.Float(),
		WeightKg: req.Box.WeightKg.Float(),
	}
	res, err := packing.Solve(box, container)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := packingResponse{Result: res}
	if total := req.TotalQuantity.Float(); total > 0 {
		plan := packing.Plan(total, req.PerBoxQuantity.Float(), res.BoxesPerContainer)
		resp.Shipment = &plan
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleDistance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin := strings.TrimSpace(q.Get("origin"))
	if origin == "" {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "origin is required")
		return
	}

	est, err := distance.EstimateKm(origin, distance.Destination{
		PostalCode: strings.TrimSpace(q.Get("dest_postal")),
		PortCode:   strings.TrimSpace(q.Get("port")),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *server) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var req calculator.Request
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := s.calculator.Calculate(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	items, err := s.history.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []history.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	snap, err := s.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type overridesRequest struct {
	Overrides pricing.Overrides `json:"overrides"`
}

func (s *server) handleQuoteOverrides(w http.ResponseWriter, r *http.Request) {
	var req overridesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	snap, err := s.calculator.ApplyOverrides(r.Context(), chi.URLParam(r, "id"), req.Overrides)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
