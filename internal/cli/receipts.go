package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/finchat/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// FormatReceipt renders the details of one processed receipt.
func FormatReceipt(r model.ProcessedReceipt) string {
	var b strings.Builder

	if r.Duplicate {
		b.WriteString(FormatWarning("Posible duplicado") + "\n")
	}

	if kf := r.KeyFields; kf != nil {
		writeField(&b, "RUC emisor", kf.IssuerTaxID)
		writeField(&b, "Serie/Número", kf.SeriesNumber)
		writeField(&b, "Fecha", kf.IssueDate)
		writeField(&b, "Tipo", kf.DocumentType)
		if total, ok := r.Total(); ok {
			writeField(&b, "Total", r.CurrencySymbol()+" "+total.StringFixed(2))
		}
	}

	writeField(&b, "Estado SUNAT", r.IssuerStatus())

	if v := r.Validation; v != nil {
		writeField(&b, "Condición", deref(v.IssuerCondition))
		writeField(&b, "CIIU", deref(v.IndustryCode))
		if v.PassesRules != nil {
			passes := ErrorStyle.Render("No")
			if *v.PassesRules {
				passes = SuccessStyle.Render("Sí")
			}
			writeField(&b, "Pasa reglas", passes)
		}
		writeField(&b, "Motivo no deducible", deref(v.NonDeductibleReason))
	}

	if c := r.Classification; c != nil {
		writeField(&b, "Categoría", c.Category)
		writeField(&b, "Deducción", c.DeductionPercentage.String()+"%")
		writeField(&b, "Deducible", r.CurrencySymbol()+" "+r.DeductibleAmount().StringFixed(2))
	}

	return RenderBox(ReceiptIcon+" "+r.FileName, strings.TrimRight(b.String(), "\n"))
}

// FormatSummary renders the totals of a batch of receipts.
func FormatSummary(s model.ReceiptSummary) string {
	return fmt.Sprintf("%d comprobante(s) · total S/ %s · deducible S/ %s",
		s.Count, s.TotalAmount.StringFixed(2), s.DeductibleAmount.StringFixed(2))
}

// FormatConsultation renders a consultation answer with its rows as a
// table and its totals as a list.
func FormatConsultation(result model.ConsultationResult) string {
	parts := []string{result.Answer}

	if result.HasRows() {
		parts = append(parts, renderTable(result.Rows))
	}

	if len(result.Totals) > 0 {
		keys := sortedKeys(result.Totals)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %s", BoldStyle.Render(k), formatValue(result.Totals[k])))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	return strings.Join(parts, "\n\n")
}

func renderTable(rows []map[string]any) string {
	columns := map[string]struct{}{}
	for _, row := range rows {
		for k := range row {
			columns[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(columns))
	for k := range columns {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cols := make([]string, 0, len(keys))
	for _, k := range keys {
		cells := []string{TableHeaderStyle.Render(k)}
		for _, row := range rows {
			cells = append(cells, TableCellStyle.Render(formatValue(row[k])))
		}
		cols = append(cols, lipgloss.JoinVertical(lipgloss.Left, cells...))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprint(val)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s %s\n", SubtleStyle.Render(label+":"), value)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
