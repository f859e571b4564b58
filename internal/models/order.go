package models

import "time"

type OrderStatus string

const OrderStatusCompleted OrderStatus = "COMPLETED"

type Order struct {
	ID            string
	UserEmail     string
	TotalAmount   float64
	TotalCO2Saved float64
	OrderDate     time.Time
	Status        OrderStatus
	Items         []OrderItem
}

type OrderItem struct {
	ProductID   string
	ProductName string
	Price       float64
	CO2Emission float64
}
