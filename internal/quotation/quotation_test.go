package quotation

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/exportquote/internal/history"
	"github.com/Simplici0/exportquote/internal/pricing"
)

func sampleDocument(t *testing.T) Document {
	t.Helper()
	product := pricing.Product{ID: 1, Name: "Cotton towels", HSNCode: "6302", Unit: "pcs", BasePriceUSD: decimal.RequireFromString("1.50")}
	res := pricing.Compute(pricing.Inputs{
		Tier:     pricing.TierEXW,
		Product:  product,
		Quantity: pricing.Units(1000),
	}, pricing.Settings{})

	snap := history.Snapshot{
		ID:        "abcdef12-3456-7890-abcd-ef1234567890",
		CreatedAt: time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
		Title:     "Towels <sample>",
		Request:   json.RawMessage(`{}`),
		Result:    res,
	}
	return NewDocument(snap, product)
}

func TestReference(t *testing.T) {
	require.Equal(t, "Q-ABCDEF12", Reference("abcdef12-3456-7890"))
	require.Equal(t, "Q-AB", Reference("ab"))
}

func TestMoneyFormatting(t *testing.T) {
	require.Equal(t, "$1,234.50", USD(decimal.RequireFromString("1234.5")))
	require.Equal(t, "$0.01", USD(decimal.RequireFromString("0.005")))
	require.Equal(t, "₹950.50", INR(decimal.RequireFromString("950.5")))
	require.True(t, strings.HasPrefix(INR(decimal.NewFromInt(1234567)), "₹"))
}

func TestTextSummary(t *testing.T) {
	doc := sampleDocument(t)
	text := Text(doc)

	require.Contains(t, text, "Q-ABCDEF12")
	require.Contains(t, text, "Cotton towels (HSN 6302)")
	require.Contains(t, text, "pcs")
	// 1000 x 1.50 x 83 plus 5% profit is 130725 INR, which is 1575 USD.
	require.Contains(t, text, "EXW:")
	require.Contains(t, text, "$1,575.00")
	require.Contains(t, text, "$1.58/unit")
	require.NotContains(t, text, "FOB:")
	require.NotContains(t, text, "adjusted")
}

func TestTextUsesAdjustedResult(t *testing.T) {
	doc := sampleDocument(t)
	base := doc.Result
	adjusted, err := pricing.Recompute(base, pricing.Overrides{pricing.LineProfit: decimal.Zero})
	require.NoError(t, err)

	snap := history.Snapshot{ID: "abcdef12", Result: base, Adjusted: &adjusted}
	doc = NewDocument(snap, doc.Product)

	text := Text(doc)
	require.Contains(t, text, "$1,500.00")
	require.Contains(t, text, "adjusted manually")
}

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink("+91 98765-43210", "Hi there & bye")
	require.Equal(t, "https://wa.me/919876543210?text=Hi+there+%26+bye", link)

	require.Equal(t, "https://wa.me/?text=x", WhatsAppLink("", "x"))
}

func TestRenderHTML(t *testing.T) {
	doc := sampleDocument(t)
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, doc))

	page := buf.String()
	require.Contains(t, page, "Export Quotation Q-ABCDEF12")
	require.Contains(t, page, "09 Mar 2026")
	require.Contains(t, page, "Towels &lt;sample&gt;")
	for _, line := range doc.Result.Breakdown {
		require.Contains(t, page, line.Label)
	}
	require.Contains(t, page, "EXW total")
	require.NotContains(t, page, "FOB total")
}
