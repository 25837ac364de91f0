package main

import (
	"context"
	"net/http"

	"github.com/Simplici0/exportquote/internal/pricing"
)

// listHandler serves a master-data listing as JSON.
func listHandler[T any](list func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// saveHandler decodes one record and stores it: zero id inserts, otherwise updates.
func saveHandler[T any](save func(context.Context, T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if !decodeJSON(w, r, &in) {
			return
		}
		out, err := save(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.masterData.GetSettings(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var st pricing.Settings
	if !decodeJSON(w, r, &st) {
		return
	}
	if err := s.masterData.SaveSettings(r.Context(), st); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	listHandler(s.masterData.ListProducts)(w, r)
}

func (s *server) handleSaveProduct(w http.ResponseWriter, r *http.Request) {
	saveHandler(s.masterData.SaveProduct)(w, r)
}

func (s *server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.masterData.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleListContainers(w http.ResponseWriter, r *http.Request) {
	listHandler(s.masterData.ListContainerTypes)(w, r)
}

func (s *server) handleSaveContainer(w http.ResponseWriter, r *http.Request) {
	saveHandler(s.masterData.SaveContainerType)(w, r)
}

func (s *server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	listHandler(s.masterData.ListLocations)(w, r)
}

func (s *server) handleSaveLocation(w http.ResponseWriter, r *http.Request) {
	saveHandler(s.masterData.SaveLocation)(w, r)
}

func (s *server) handleListPorts(w http.ResponseWriter, r *http.Request) {
	listHandler(s.masterData.ListPorts)(w, r)
}

func (s *server) handleSavePort(w http.ResponseWriter, r *http.Request) {
	saveHandler(s.masterData.SavePort)(w, r)
}

func (s *server) handleListCountries(w http.ResponseWriter, r *http.Request) {
	listHandler(s.masterData.ListCountries)(w, r)
}

func (s *server) handleSaveCountry(w http.ResponseWriter, r *http.Request) {
	saveHandler(s.masterData.SaveCountry)(w, r)
}

// handleListDestinationPorts filters by ?country_id= when given.
func (s *server) handleListDestinationPorts(w http.ResponseWriter, r *http.Request) {
	countryID := queryID(r, "country_id")
	listHandler(func(ctx context.Context) ([]pricing.DestinationPort, error) {
		return s.masterData.ListDestinationPorts(ctx, countryID)
	})(w, r)
}

func (s *server) handleSaveDestinationPort(w http.ResponseWriter, r *http.Request) {
	saveHandler(s.masterData.SaveDestinationPort)(w, r)
}

// handleListFreightLanes filters by ?country_id= when given.
func (s *server) handleListFreightLanes(w http.ResponseWriter, r *http.Request) {
	countryID := queryID(r, "country_id")
	listHandler(func(ctx context.Context) ([]pricing.FreightLane, error) {
		return s.masterData.ListFreightLanes(ctx, countryID)
	})(w, r)
}

func (s *server) handleSaveFreightLane(w http.ResponseWriter, r *http.Request) {
	saveHandler(s.masterData.SaveFreightLane)(w, r)
}

func (s *server) handleListCertifications(w http.ResponseWriter, r *http.Request) {
	listHandler(s.masterData.ListCertifications)(w, r)
}

func (s *server) handleSaveCertification(w http.ResponseWriter, r *http.Request) {
	saveHandler(s.masterData.SaveCertification)(w, r)
}
