package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uploadResponse = `{
  "usuarioId": 7,
  "totalArchivos": 2,
  "procesados": [
    {
      "nombreArchivo": "boleta-farmacia.pdf",
      "hashArchivo": "9f2c",
      "esDuplicado": false,
      "idComprobante": 41,
      "camposClave": {
        "ruc_emisor": "20100070970",
        "serie_numero": "B001-123",
        "fecha_emision": "2024-03-01",
        "moneda": "PEN",
        "monto_total": 120.5,
        "tipo_comprobante": "boleta"
      },
      "validacionSunat": {
        "ruc": "20100070970",
        "estadoRuc": "ACTIVO",
        "condicionRuc": "HABIDO",
        "ciiuPrincipal": "4772",
        "pasaReglasBasicas": true,
        "motivoNoDeducible": null
      },
      "clasificacion": {
        "categoriaGasto": "salud",
        "porcentajeDeduccion": 30,
        "versionRegla": "2024.1"
      }
    },
    {
      "nombreArchivo": "foto.jpg",
      "hashArchivo": null,
      "esDuplicado": true
    }
  ]
}`

func TestUploadResult_Decode(t *testing.T) {
	var result UploadResult
	require.NoError(t, json.Unmarshal([]byte(uploadResponse), &result))

	assert.Equal(t, int64(7), result.UserID)
	assert.Equal(t, 2, result.TotalFiles)
	require.Len(t, result.Processed, 2)

	first := result.Processed[0]
	require.NotNil(t, first.KeyFields)
	require.NotNil(t, first.Validation)
	require.NotNil(t, first.Classification)
	assert.Equal(t, "20100070970", first.KeyFields.IssuerTaxID)
	assert.Equal(t, "B001-123", first.KeyFields.SeriesNumber)
	assert.Equal(t, "ACTIVO", first.IssuerStatus())
	assert.Nil(t, first.Validation.NonDeductibleReason)
	require.NotNil(t, first.Validation.PassesRules)
	assert.True(t, *first.Validation.PassesRules)
	assert.Equal(t, "salud", first.Classification.Category)

	total, ok := first.Total()
	require.True(t, ok)
	assert.True(t, total.Equal(decimal.RequireFromString("120.5")))

	second := result.Processed[1]
	assert.True(t, second.Duplicate)
	assert.Nil(t, second.FileHash)
	assert.Nil(t, second.KeyFields)
	assert.Equal(t, "Pendiente", second.IssuerStatus())
	assert.Equal(t, DefaultCurrencySymbol, second.CurrencySymbol())
}

func TestProcessedReceipt_Summary(t *testing.T) {
	total := decimal.RequireFromString("80")
	zero := decimal.Zero

	tests := []struct {
		name    string
		receipt ProcessedReceipt
		want    string
	}{
		{
			name:    "name only",
			receipt: ProcessedReceipt{FileName: "a.pdf"},
			want:    "a.pdf",
		},
		{
			name: "total with default currency and deduction",
			receipt: ProcessedReceipt{
				FileName:       "b.pdf",
				KeyFields:      &KeyFields{Total: &total},
				Classification: &Classification{DeductionPercentage: decimal.NewFromInt(15)},
			},
			want: "b.pdf | S/ 80.00 | Deducción 15%",
		},
		{
			name: "zero total omitted, duplicate flagged",
			receipt: ProcessedReceipt{
				FileName:  "c.pdf",
				KeyFields: &KeyFields{Total: &zero, Currency: "USD"},
				Duplicate: true,
			},
			want: "c.pdf | Posible duplicado",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.receipt.Summary())
		})
	}
}

func TestSummarize(t *testing.T) {
	var result UploadResult
	require.NoError(t, json.Unmarshal([]byte(uploadResponse), &result))

	summary := Summarize(result.Processed)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, "120.5", summary.TotalAmount.String())
	// 120.5 * 30 / 100 = 36.15
	assert.Equal(t, "36.15", summary.DeductibleAmount.StringFixed(2))
	assert.Equal(t, []string{"41"}, summary.ReceiptIDs)

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, empty.TotalAmount.IsZero())
}
