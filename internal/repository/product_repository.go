package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"ecobazaar/internal/database"
	"ecobazaar/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

const productColumns = `id, name, description, price, image_url, category, co2_emission_kg, is_eco_friendly, alternative_product_id, created_at, updated_at`

type ProductRepository struct {
	db database.DB
}

func NewProductRepository(db database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	const query = `
		INSERT INTO products (
			id, name, description, price, image_url, category, co2_emission_kg,
			is_eco_friendly, alternative_product_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
		RETURNING ` + productColumns

	return scanProduct(r.db.QueryRow(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		p.ImageURL,
		p.Category,
		p.CO2Emission,
		p.IsEcoFriendly,
		p.AlternativeProductID,
	))
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (models.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.db.QueryRow(ctx, query, id))
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) Update(ctx context.Context, p models.Product) (models.Product, error) {
	const query = `
		UPDATE products
		SET name = $2,
		    description = $3,
		    price = $4,
		    image_url = $5,
		    category = $6,
		    co2_emission_kg = $7,
		    is_eco_friendly = $8,
		    alternative_product_id = $9,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	return scanProduct(r.db.QueryRow(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		p.ImageURL,
		p.Category,
		p.CO2Emission,
		p.IsEcoFriendly,
		p.AlternativeProductID,
	))
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM products WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ReferencedImageURLs returns the subset of urls still used by a product.
func (r *ProductRepository) ReferencedImageURLs(ctx context.Context, urls []string) (map[string]struct{}, error) {
	const query = `SELECT DISTINCT image_url FROM products WHERE image_url = ANY($1)`

	refs := make(map[string]struct{})
	if len(urls) == 0 {
		return refs, nil
	}

	rows, err := r.db.Query(ctx, query, urls)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		refs[url] = struct{}{}
	}
	return refs, rows.Err()
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.ImageURL,
		&p.Category,
		&p.CO2Emission,
		&p.IsEcoFriendly,
		&p.AlternativeProductID,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, err
	}
	return p, nil
}
