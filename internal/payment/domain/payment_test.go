package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPayment(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	a := NewPayment(3, 29.97, "", now)
	b := NewPayment(3, 29.97, "BANK_TRANSFER", now)

	assert.Equal(t, MethodCreditCard, a.Method)
	assert.Equal(t, "BANK_TRANSFER", b.Method)
	assert.Equal(t, StatusCompleted, a.Status)
	assert.Equal(t, now, a.CreatedAt)
	assert.Regexp(t, `^TXN-[0-9a-f-]{36}$`, a.TransactionID)
	assert.NotEqual(t, a.TransactionID, b.TransactionID)
}
