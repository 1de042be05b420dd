package domain

import (
	"fmt"
	"time"
)

type (
	Type    string
	Status  string
	Channel string
)

const (
	TypeOrderCreated Type    = "ORDER_CREATED"
	StatusSent       Status  = "SENT"
	ChannelEmail     Channel = "EMAIL"
)

type Notification struct {
	ID         int64     `json:"id"`
	OrderID    int64     `json:"orderId"`
	CustomerID int64     `json:"customerId"`
	Recipient  string    `json:"recipient"`
	Message    string    `json:"message"`
	Type       Type      `json:"type"`
	Status     Status    `json:"status"`
	Channel    Channel   `json:"channel"`
	CreatedAt  time.Time `json:"createdAt"`
	SentAt     time.Time `json:"sentAt"`
}

func NewOrderCreated(orderID, customerID int64, totalAmount float64, now time.Time) Notification {
	return Notification{
		OrderID:    orderID,
		CustomerID: customerID,
		Recipient:  fmt.Sprintf("customer:%d", customerID),
		Message: fmt.Sprintf("Your order #%d has been created successfully! Total amount: $%.2f. "+
			"We'll notify you once it ships. Thank you for your purchase!", orderID, totalAmount),
		Type:      TypeOrderCreated,
		Status:    StatusSent,
		Channel:   ChannelEmail,
		CreatedAt: now,
		SentAt:    now,
	}
}
