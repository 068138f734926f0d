package model

// ConsultationResult is the answer to a free-text query over the user's
// receipts. It lives only for the chat turn that produced it.
type ConsultationResult struct {
	Totals map[string]any   `json:"totales,omitempty"`
	Kind   string           `json:"tipo"`
	Answer string           `json:"respuesta"`
	Rows   []map[string]any `json:"datos,omitempty"`
}

// HasRows reports whether structured rows accompany the answer.
func (r ConsultationResult) HasRows() bool {
	return len(r.Rows) > 0
}
