package domain

import (
	"fmt"
	"net/url"
)

type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// Links returns the actions and related resources valid for the order's
// current status.
func Links(o Order) []Link {
	links := []Link{{Rel: "self", Href: fmt.Sprintf("/api/orders/%d", o.ID)}}

	switch o.Status {
	case StatusPending, StatusValidated:
		links = append(links, Link{Rel: "cancel", Href: fmt.Sprintf("/api/orders/%d/cancel", o.ID)})
	case StatusPaymentProcessing:
		links = append(links, Link{Rel: "payment-status", Href: fmt.Sprintf("/api/payments?orderId=%d", o.ID)})
	case StatusPaid:
		links = append(links, Link{Rel: "request-shipment", Href: fmt.Sprintf("/api/shipping?orderId=%d", o.ID)})
	case StatusShipping, StatusShipped:
		links = append(links, Link{Rel: "track-shipment", Href: fmt.Sprintf("/api/shipping?orderId=%d", o.ID)})
	}

	return append(links,
		Link{Rel: "customer", Href: fmt.Sprintf("/api/customers/%d", o.CustomerID)},
		Link{Rel: "product", Href: "/api/inventory/" + url.PathEscape(o.ProductID)},
	)
}
