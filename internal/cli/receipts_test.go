package cli

import (
	"bytes"
	"testing"

	"github.com/Veraticus/finchat/internal/model"
	"github.com/Veraticus/finchat/internal/upload"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatReceipt(t *testing.T) {
	total := decimal.RequireFromString("80")
	status := "ACTIVO"
	passes := false
	reason := "Proveedor no habido"

	out := FormatReceipt(model.ProcessedReceipt{
		FileName:  "boleta.pdf",
		Duplicate: true,
		KeyFields: &model.KeyFields{
			Total:        &total,
			Currency:     "PEN",
			IssuerTaxID:  "20123456789",
			SeriesNumber: "B001-123",
		},
		Validation: &model.TaxValidation{
			IssuerStatus:        &status,
			PassesRules:         &passes,
			NonDeductibleReason: &reason,
		},
		Classification: &model.Classification{
			Category:            "restaurantes",
			DeductionPercentage: decimal.RequireFromString("15"),
		},
	})

	for _, want := range []string{
		"boleta.pdf",
		"Posible duplicado",
		"20123456789",
		"B001-123",
		"PEN 80.00",
		"ACTIVO",
		"No",
		"Proveedor no habido",
		"restaurantes",
		"15%",
		"PEN 12.00",
	} {
		assert.Contains(t, out, want)
	}
}

func TestFormatReceipt_Minimal(t *testing.T) {
	out := FormatReceipt(model.ProcessedReceipt{FileName: "foto.jpg"})

	assert.Contains(t, out, "foto.jpg")
	assert.Contains(t, out, "Pendiente")
	assert.NotContains(t, out, "Deducción")
}

func TestFormatConsultation(t *testing.T) {
	out := FormatConsultation(model.ConsultationResult{
		Answer: "Tienes 2 comprobantes",
		Rows: []map[string]any{
			{"ruc_emisor": "20123456789", "monto_total": 80.0},
			{"ruc_emisor": "20999999999", "monto_total": 12.5},
		},
		Totals: map[string]any{"monto_total": 92.5, "cantidad": 2.0},
	})

	for _, want := range []string{"Tienes 2 comprobantes", "ruc_emisor", "20999999999", "80", "12.50", "cantidad", "92.50"} {
		assert.Contains(t, out, want)
	}
}

func TestFormatSummary(t *testing.T) {
	out := FormatSummary(model.ReceiptSummary{
		Count:            2,
		TotalAmount:      decimal.RequireFromString("120.5"),
		DeductibleAmount: decimal.RequireFromString("18.075"),
	})
	assert.Equal(t, "2 comprobante(s) · total S/ 120.50 · deducible S/ 18.08", out)
}

func TestRenderStages(t *testing.T) {
	p := upload.NewPipeline()
	_ = p.Apply(upload.EventStart)
	_ = p.Apply(upload.EventFail)

	out := RenderStages(p.Stages())
	assert.Contains(t, out, ErrorIcon+" Subiendo archivo...")
	assert.Contains(t, out, PendingIcon+" Analizando...")
}

func TestStageProgress_Update(t *testing.T) {
	var buf bytes.Buffer
	progress := NewStageProgress(&buf, len(upload.DefaultStages))

	p := upload.NewPipeline()
	_ = p.Apply(upload.EventStart)
	progress.Update(upload.State{Phase: p.Phase(), Stages: p.Stages()})
	_ = p.Apply(upload.EventComplete)
	progress.Update(upload.State{Phase: p.Phase(), Stages: p.Stages()})

	assert.True(t, progress.finished)
	assert.Contains(t, buf.String(), "Listo")

	// Updates after finishing are ignored.
	progress.Update(upload.State{Phase: upload.PhaseRunning})
}
