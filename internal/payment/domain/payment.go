package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusCompleted Status = "COMPLETED"

	MethodCreditCard = "CREDIT_CARD"
)

var ErrNotFound = errors.New("payment not found")

// Payment records the capture for one order. An order never has more than one.
type Payment struct {
	ID            int64     `json:"id"`
	OrderID       int64     `json:"orderId"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"paymentMethod"`
	Status        Status    `json:"status"`
	TransactionID string    `json:"transactionId"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewPayment(orderID int64, amount float64, method string, now time.Time) Payment {
	if method == "" {
		method = MethodCreditCard
	}
	return Payment{
		OrderID:       orderID,
		Amount:        amount,
		Method:        method,
		Status:        StatusCompleted,
		TransactionID: "TXN-" + uuid.NewString(),
		CreatedAt:     now,
	}
}
