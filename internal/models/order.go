package models

import "time"

type OrderStatus string

const (
	OrderSuccess  OrderStatus = "SUCCESS"
	OrderRejected OrderStatus = "REJECTED"
	OrderPending  OrderStatus = "PENDING"
)

type OrderRecord struct {
	Time     time.Time   `json:"time" yaml:"time"`
	Side     Side        `json:"side" yaml:"side"`
	Price    float64     `json:"price" yaml:"price"`
	Quantity float64     `json:"quantity" yaml:"quantity"`
	Status   OrderStatus `json:"status" yaml:"status"`
	Message  string      `json:"message,omitempty" yaml:"message,omitempty"`
	OrderID  int64       `json:"orderId,omitempty" yaml:"order_id,omitempty"`
}
