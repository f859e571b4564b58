package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ecobazaar/internal/ids"
	"ecobazaar/internal/models"
	"ecobazaar/internal/validation"
)

type OrderStore interface {
	Create(ctx context.Context, order models.Order) error
	ListByUserEmail(ctx context.Context, email string) ([]models.Order, error)
}

type OrderItemInput struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	CO2Emission *float64 `json:"co2Emission" validate:"required,gte=0"`
}

type CreateOrderInput struct {
	TotalAmount *float64         `json:"totalAmount" validate:"required,gte=0"`
	TotalCO2    *float64         `json:"totalCo2" validate:"required,gte=0"`
	Items       []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

type OrderService struct {
	orders   OrderStore
	validate *validation.Validator
	now      func() time.Time
	log      zerolog.Logger
}

func NewOrderService(orders OrderStore, validate *validation.Validator, log zerolog.Logger) *OrderService {
	return &OrderService{orders: orders, validate: validate, now: time.Now, log: log}
}

// Create records a completed checkout for the caller.
func (s *OrderService) Create(ctx context.Context, id Identity, input CreateOrderInput) (models.Order, error) {
	if err := s.validate.Struct(input); err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		ID:            ids.New(),
		UserEmail:     id.Email,
		TotalAmount:   *input.TotalAmount,
		TotalCO2Saved: *input.TotalCO2,
		OrderDate:     s.now().UTC(),
		Status:        models.OrderStatusCompleted,
		Items:         make([]models.OrderItem, 0, len(input.Items)),
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   item.ID,
			ProductName: item.Name,
			Price:       *item.Price,
			CO2Emission: *item.CO2Emission,
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return models.Order{}, err
	}
	s.log.Info().Str("order_id", order.ID).Str("user_id", id.UserID).Int("items", len(order.Items)).Msg("order placed")
	return order, nil
}

func (s *OrderService) ListMine(ctx context.Context, id Identity) ([]models.Order, error) {
	return s.orders.ListByUserEmail(ctx, id.Email)
}
