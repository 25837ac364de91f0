package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/exportquote/internal/masterdata"
	"github.com/Simplici0/exportquote/internal/observability"
	"github.com/Simplici0/exportquote/internal/pricing"
	"github.com/Simplici0/exportquote/internal/quotation"
)

// quoteDocument loads a stored quote. A product deleted since the quote was made exports without its name.
func (s *server) quoteDocument(ctx context.Context, id string) (quotation.Document, error) {
	snap, err := s.history.Get(ctx, id)
	if err != nil {
		return quotation.Document{}, err
	}

	var req struct {
		ProductID int64 `json:"product_id"`
	}
	_ = json.Unmarshal(snap.Request, &req)

	var product pricing.Product
	if req.ProductID > 0 {
		product, err = s.masterData.GetProduct(ctx, req.ProductID)
		if err != nil && !errors.Is(err, masterdata.ErrNotFound) {
			return quotation.Document{}, err
		}
	}
	return quotation.NewDocument(snap, product), nil
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	doc, err := s.quoteDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(quotation.Text(doc)))
}

func (s *server) handleQuoteWhatsApp(w http.ResponseWriter, r *http.Request) {
	doc, err := s.quoteDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	text := quotation.Text(doc)
	writeJSON(w, http.StatusOK, map[string]string{
		"text": text,
		"link": quotation.WhatsAppLink(r.URL.Query().Get("phone"), text),
	})
}

func (s *server) handleQuotePrint(w http.ResponseWriter, r *http.Request) {
	doc, err := s.quoteDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var page bytes.Buffer
	if err := quotation.RenderHTML(&page, doc); err != nil {
		observability.FromContext(r.Context()).Error("render quotation", zap.Error(err))
		http.Error(w, "failed to render quotation", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = page.WriteTo(w)
}
