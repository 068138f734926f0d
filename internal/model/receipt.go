package model

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is shown when a receipt has no currency.
const DefaultCurrencySymbol = "S/"

var hundred = decimal.NewFromInt(100)

// UploadResult is the backend's answer to a receipt submission.
type UploadResult struct {
	Processed  []ProcessedReceipt `json:"procesados"`
	UserID     int64              `json:"usuarioId"`
	TotalFiles int                `json:"totalArchivos"`
}

// ProcessedReceipt is the server-side OCR, validation and classification
// outcome for one submitted file.
type ProcessedReceipt struct {
	KeyFields      *KeyFields      `json:"camposClave,omitempty"`
	Validation     *TaxValidation  `json:"validacionSunat,omitempty"`
	Classification *Classification `json:"clasificacion,omitempty"`
	ReceiptID      *int64          `json:"idComprobante,omitempty"`
	FileHash       *string         `json:"hashArchivo,omitempty"`
	FileName       string          `json:"nombreArchivo"`
	Duplicate      bool            `json:"esDuplicado"`
}

// KeyFields are the fields extracted from the receipt document.
type KeyFields struct {
	Total         *decimal.Decimal `json:"monto_total,omitempty"`
	IssuerTaxID   string           `json:"ruc_emisor,omitempty"`
	SeriesNumber  string           `json:"serie_numero,omitempty"`
	IssueDate     string           `json:"fecha_emision,omitempty"`
	Currency      string           `json:"moneda,omitempty"`
	CustomerName  string           `json:"nombre_cliente,omitempty"`
	CustomerDocID string           `json:"doc_cliente,omitempty"`
	DocumentType  string           `json:"tipo_comprobante,omitempty"`
}

// TaxValidation is the result of checking the issuer against the tax
// authority registry and the deductibility rules.
type TaxValidation struct {
	PassesRules         *bool   `json:"pasaReglasBasicas,omitempty"`
	IssuerStatus        *string `json:"estadoRuc,omitempty"`
	IssuerCondition     *string `json:"condicionRuc,omitempty"`
	IndustryCode        *string `json:"ciiuPrincipal,omitempty"`
	NonDeductibleReason *string `json:"motivoNoDeducible,omitempty"`
	IssuerTaxID         string  `json:"ruc"`
}

// Classification is the expense category assigned to the receipt.
type Classification struct {
	Category            string          `json:"categoriaGasto"`
	RuleVersion         string          `json:"versionRegla"`
	DeductionPercentage decimal.Decimal `json:"porcentajeDeduccion"`
}

// Total returns the extracted total amount, if any.
func (r ProcessedReceipt) Total() (decimal.Decimal, bool) {
	if r.KeyFields == nil || r.KeyFields.Total == nil {
		return decimal.Zero, false
	}
	return *r.KeyFields.Total, true
}

// CurrencySymbol returns the receipt currency or the default symbol.
func (r ProcessedReceipt) CurrencySymbol() string {
	if r.KeyFields != nil && r.KeyFields.Currency != "" {
		return r.KeyFields.Currency
	}
	return DefaultCurrencySymbol
}

// DeductibleAmount is total × deduction% / 100. Receipts without a total or
// a classification deduct nothing.
func (r ProcessedReceipt) DeductibleAmount() decimal.Decimal {
	total, ok := r.Total()
	if !ok || r.Classification == nil {
		return decimal.Zero
	}
	return total.Mul(r.Classification.DeductionPercentage).Div(hundred).Round(2)
}

// IssuerStatus returns the registry status, or "Pendiente" when validation
// has not produced one.
func (r ProcessedReceipt) IssuerStatus() string {
	if r.Validation != nil && r.Validation.IssuerStatus != nil && *r.Validation.IssuerStatus != "" {
		return *r.Validation.IssuerStatus
	}
	return "Pendiente"
}

// Summary renders the one-line description used in chat messages:
// "name | S/ 120.00 | Deducción 15% | Posible duplicado".
func (r ProcessedReceipt) Summary() string {
	parts := []string{r.FileName}

	if total, ok := r.Total(); ok && !total.IsZero() {
		parts = append(parts, r.CurrencySymbol()+" "+total.StringFixed(2))
	}
	if r.Classification != nil {
		parts = append(parts, "Deducción "+r.Classification.DeductionPercentage.String()+"%")
	}
	if r.Duplicate {
		parts = append(parts, "Posible duplicado")
	}

	return strings.Join(parts, " | ")
}

// Summarize aggregates processed receipts for attachment to a message.
func Summarize(receipts []ProcessedReceipt) ReceiptSummary {
	summary := ReceiptSummary{
		Count:            len(receipts),
		TotalAmount:      decimal.Zero,
		DeductibleAmount: decimal.Zero,
	}

	for _, r := range receipts {
		if total, ok := r.Total(); ok {
			summary.TotalAmount = summary.TotalAmount.Add(total)
		}
		summary.DeductibleAmount = summary.DeductibleAmount.Add(r.DeductibleAmount())

		switch {
		case r.ReceiptID != nil:
			summary.ReceiptIDs = append(summary.ReceiptIDs, strconv.FormatInt(*r.ReceiptID, 10))
		case r.FileHash != nil && *r.FileHash != "":
			summary.ReceiptIDs = append(summary.ReceiptIDs, *r.FileHash)
		}
	}

	return summary
}
