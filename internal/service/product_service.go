package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"ecobazaar/internal/ids"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repository"
	"ecobazaar/internal/validation"
)

type ProductStore interface {
	Create(ctx context.Context, p models.Product) (models.Product, error)
	GetByID(ctx context.Context, id string) (models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, p models.Product) (models.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductInput struct {
	Name                 string   `json:"name" validate:"required,max=255"`
	Description          string   `json:"description" validate:"max=2000"`
	Price                *float64 `json:"price" validate:"required,gte=0"`
	ImageURL             string   `json:"imageUrl" validate:"max=1024"`
	Category             string   `json:"category" validate:"max=100"`
	CO2Emission          *float64 `json:"co2Emission" validate:"required,gte=0"`
	IsEcoFriendly        bool     `json:"isEcoFriendly"`
	AlternativeProductID *string  `json:"alternativeProductId"`
}

func (in ProductInput) fields() models.ProductFields {
	f := models.ProductFields{
		Name:                 strings.TrimSpace(in.Name),
		Description:          in.Description,
		ImageURL:             in.ImageURL,
		Category:             in.Category,
		IsEcoFriendly:        in.IsEcoFriendly,
		AlternativeProductID: in.AlternativeProductID,
	}
	if in.Price != nil {
		f.Price = *in.Price
	}
	if in.CO2Emission != nil {
		f.CO2Emission = *in.CO2Emission
	}
	if f.AlternativeProductID != nil && *f.AlternativeProductID == "" {
		f.AlternativeProductID = nil
	}
	return f
}

type ProductService struct {
	products ProductStore
	validate *validation.Validator
	log      zerolog.Logger
}

func NewProductService(products ProductStore, validate *validation.Validator, log zerolog.Logger) *ProductService {
	return &ProductService{products: products, validate: validate, log: log}
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx)
}

func (s *ProductService) Get(ctx context.Context, id string) (models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	return p, mapProductErr(err)
}

func (s *ProductService) Create(ctx context.Context, id Identity, input ProductInput) (models.Product, error) {
	if !id.IsAdmin() {
		return models.Product{}, ErrForbidden
	}
	if err := s.validate.Struct(input); err != nil {
		return models.Product{}, err
	}

	productID := ids.New()
	fields := input.fields()
	if err := s.checkAlternative(ctx, productID, fields.AlternativeProductID); err != nil {
		return models.Product{}, err
	}

	created, err := s.products.Create(ctx, models.Product{ID: productID}.Apply(fields))
	if err != nil {
		return models.Product{}, err
	}
	s.log.Info().Str("product_id", created.ID).Str("by", id.UserID).Msg("product created")
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, id Identity, productID string, input ProductInput) (models.Product, error) {
	if !id.IsAdmin() {
		return models.Product{}, ErrForbidden
	}
	if err := s.validate.Struct(input); err != nil {
		return models.Product{}, err
	}

	current, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return models.Product{}, mapProductErr(err)
	}

	fields := input.fields()
	if err := s.checkAlternative(ctx, productID, fields.AlternativeProductID); err != nil {
		return models.Product{}, err
	}

	updated, err := s.products.Update(ctx, current.Apply(fields))
	if err != nil {
		return models.Product{}, mapProductErr(err)
	}
	s.log.Info().Str("product_id", updated.ID).Str("by", id.UserID).Msg("product updated")
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id Identity, productID string) error {
	if !id.IsAdmin() {
		return ErrForbidden
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return mapProductErr(err)
	}
	s.log.Info().Str("product_id", productID).Str("by", id.UserID).Msg("product deleted")
	return nil
}

// checkAlternative requires a suggested alternative to be another existing product.
func (s *ProductService) checkAlternative(ctx context.Context, productID string, alt *string) error {
	if alt == nil {
		return nil
	}
	if *alt == productID {
		return validation.Errors{{Field: "alternativeProductId", Message: "A product cannot be its own alternative"}}
	}
	if _, err := s.products.GetByID(ctx, *alt); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return validation.Errors{{Field: "alternativeProductId", Message: "Alternative product does not exist"}}
		}
		return err
	}
	return nil
}

func mapProductErr(err error) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		return ErrProductNotFound
	}
	return err
}
