package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ecobazaar/internal/models"
	"ecobazaar/internal/service"
)

type orderItemResponse struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	CO2Emission float64 `json:"co2Emission"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	UserEmail     string              `json:"userEmail"`
	TotalAmount   float64             `json:"totalAmount"`
	TotalCO2Saved float64             `json:"totalCo2Saved"`
	OrderDate     time.Time           `json:"orderDate"`
	Status        string              `json:"status"`
	Items         []orderItemResponse `json:"items"`
}

func toOrderResponse(o models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.Price,
			CO2Emission: it.CO2Emission,
		})
	}
	return orderResponse{
		ID:            o.ID,
		UserEmail:     o.UserEmail,
		TotalAmount:   o.TotalAmount,
		TotalCO2Saved: o.TotalCO2Saved,
		OrderDate:     o.OrderDate,
		Status:        string(o.Status),
		Items:         items,
	}
}

func (h HandlerSet) CreateOrder(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req service.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	order, err := h.orders.Create(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h HandlerSet) MyOrders(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListMine(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, resp)
}
