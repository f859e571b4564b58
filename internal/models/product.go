package models

import "time"

type Product struct {
	ID                   string
	Name                 string
	Description          string
	Price                float64
	ImageURL             string
	Category             string
	CO2Emission          float64
	IsEcoFriendly        bool
	AlternativeProductID *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ProductFields holds the editable part of a product.
type ProductFields struct {
	Name                 string
	Description          string
	Price                float64
	ImageURL             string
	Category             string
	CO2Emission          float64
	IsEcoFriendly        bool
	AlternativeProductID *string
}

// Apply returns a copy of p with every editable field replaced by f.
func (p Product) Apply(f ProductFields) Product {
	p.Name = f.Name
	p.Description = f.Description
	p.Price = f.Price
	p.ImageURL = f.ImageURL
	p.Category = f.Category
	p.CO2Emission = f.CO2Emission
	p.IsEcoFriendly = f.IsEcoFriendly
	p.AlternativeProductID = f.AlternativeProductID
	return p
}
