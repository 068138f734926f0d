package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewMessage(t *testing.T) {
	first := NewUserMessage("hola")
	second := NewSystemMessage("respuesta")

	assert.True(t, first.IsUser())
	assert.False(t, second.IsUser())
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.Timestamp.IsZero())
	assert.Nil(t, first.Receipts)
}

func TestMessage_WithReceiptsCopies(t *testing.T) {
	ids := []string{"1", "2"}
	msg := NewSystemMessage("ok").WithReceipts(ReceiptSummary{
		Count:       2,
		TotalAmount: decimal.NewFromInt(10),
		ReceiptIDs:  ids,
	})

	ids[0] = "changed"
	assert.Equal(t, []string{"1", "2"}, msg.Receipts.ReceiptIDs)
}

func TestCredential(t *testing.T) {
	assert.True(t, Credential{}.IsZero())
	assert.True(t, Credential{Token: "  "}.IsZero())

	cred := Credential{Token: "abcdefghijklmnopqrstuvwxyz"}
	assert.False(t, cred.IsZero())
	assert.Equal(t, "abcd...wxyz", cred.Redacted())

	tok := cred.OAuth2()
	assert.Equal(t, "Bearer", tok.Type())
	assert.Equal(t, cred.Token, tok.AccessToken)
}

func TestPendingFile(t *testing.T) {
	f := NewPendingFile("/tmp/recibos/boleta.PDF")
	assert.Equal(t, "boleta.PDF", f.DisplayName())
	assert.Equal(t, "application/pdf", f.ContentType())

	unknown := PendingFile{Source: "/tmp/scan.xyz"}
	assert.Equal(t, "scan.xyz", unknown.DisplayName())
	assert.Equal(t, DefaultMediaType, unknown.ContentType())
}
