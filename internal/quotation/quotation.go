package quotation

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/samber/lo"

	"github.com/Simplici0/exportquote/internal/history"
	"github.com/Simplici0/exportquote/internal/pricing"
)

// Document is a finished quote ready to export. Figures are formatted, never recomputed.
type Document struct {
	Reference string
	Date      time.Time
	Title     string
	Notes     string
	Product   pricing.Product
	Result    pricing.Result
}

// NewDocument builds a Document from a stored quote, using the adjusted figures when present.
func NewDocument(snap history.Snapshot, product pricing.Product) Document {
	return Document{
		Reference: Reference(snap.ID),
		Date:      snap.CreatedAt,
		Title:     snap.Title,
		Notes:     snap.Notes,
		Product:   product,
		Result:    snap.Current(),
	}
}

// Reference shortens a quote id for display.
func Reference(id string) string {
	short := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(short) > 8 {
		short = short[:8]
	}
	return "Q-" + short
}

type tierRow struct {
	Tier  pricing.Tier
	Price pricing.TierPrice
}

func (d Document) tiers() []tierRow {
	rows := []tierRow{
		{pricing.TierEXW, d.Result.ExFactory},
		{pricing.TierFOB, d.Result.FOB},
		{pricing.TierCIF, d.Result.CIF},
	}
	return lo.Filter(rows, func(r tierRow, _ int) bool { return r.Price.Computed })
}

// Text is a short summary suitable for a chat message.
func Text(d Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Export Quotation %s*\n", d.Reference)
	if d.Product.Name != "" {
		b.WriteString("Product: " + d.Product.Name)
		if d.Product.HSNCode != "" {
			b.WriteString(" (HSN " + d.Product.HSNCode + ")")
		}
		b.WriteString("\n")
	}
	unit := d.Product.Unit
	if unit == "" {
		unit = "units"
	}
	fmt.Fprintf(&b, "Quantity: %s %s\n", Count(d.Result.Quantities.TotalUnits), unit)
	if n := d.Result.Quantities.ContainerCount; n > 0 {
		fmt.Fprintf(&b, "Containers: %d\n", n)
	}
	for _, row := range d.tiers() {
		fmt.Fprintf(&b, "%s: %s | %s (%s/unit)\n", row.Tier, INR(row.Price.INR), USD(row.Price.USD), USD(row.Price.PerUnitUSD))
	}
	fmt.Fprintf(&b, "Exchange rate: %s/USD", INR(d.Result.Currency.EffectiveRate))
	if d.Result.Adjusted {
		b.WriteString("\n_Figures adjusted manually._")
	}
	return b.String()
}

// WhatsAppLink returns a wa.me share link. Only the digits of phone are kept; without
// any digits the link opens the contact picker.
func WhatsAppLink(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	return "https://wa.me/" + digits + "?" + url.Values{"text": {text}}.Encode()
}

//go:embed templates/quotation.html
var templateFS embed.FS

var printTemplate = template.Must(template.New("quotation.html").Funcs(template.FuncMap{
	"inr":   INR,
	"usd":   USD,
	"count": Count,
	"rate":  Rate,
	"date":  func(t time.Time) string { return t.Format("02 Jan 2006") },
}).ParseFS(templateFS, "templates/quotation.html"))

type printView struct {
	Document
	Tiers []tierRow
	// Stages groups breakdown lines in EXW, FOB, CIF order, skipping empty stages.
	Stages []stageView
}

type stageView struct {
	Tier  pricing.Tier
	Lines []pricing.Line
	Total pricing.TierPrice
}

// RenderHTML writes a printable quotation page.
func RenderHTML(w io.Writer, d Document) error {
	view := printView{Document: d, Tiers: d.tiers()}
	for _, row := range view.Tiers {
		lines := lo.Filter(d.Result.Breakdown, func(l pricing.Line, _ int) bool { return l.Stage == row.Tier })
		view.Stages = append(view.Stages, stageView{Tier: row.Tier, Lines: lines, Total: row.Price})
	}
	if err := printTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render quotation: %w", err)
	}
	return nil
}
