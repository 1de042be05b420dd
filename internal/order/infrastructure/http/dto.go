package http

import "github.com/dmehra2102/order-saga/internal/order/domain"

type orderRequest struct {
	CustomerID int64  `json:"customerId"`
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	domain.Order
	Links []domain.Link `json:"_links"`
}

type listResponse struct {
	Orders []orderResponse `json:"orders"`
	Links  []domain.Link   `json:"_links"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toResponse(o domain.Order) orderResponse {
	return orderResponse{Order: o, Links: domain.Links(o)}
}
