package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ecobazaar/internal/models"
	"ecobazaar/internal/service"
)

type productResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Price                float64   `json:"price"`
	ImageURL             string    `json:"imageUrl"`
	Category             string    `json:"category"`
	CO2Emission          float64   `json:"co2Emission"`
	IsEcoFriendly        bool      `json:"isEcoFriendly"`
	AlternativeProductID *string   `json:"alternativeProductId"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func toProductResponse(p models.Product) productResponse {
	return productResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Description:          p.Description,
		Price:                p.Price,
		ImageURL:             p.ImageURL,
		Category:             p.Category,
		CO2Emission:          p.CO2Emission,
		IsEcoFriendly:        p.IsEcoFriendly,
		AlternativeProductID: p.AlternativeProductID,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func (h HandlerSet) ListProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) GetProduct(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

func (h HandlerSet) CreateProduct(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	p, err := h.products.Create(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

func (h HandlerSet) UpdateProduct(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	p, err := h.products.Update(c.Request.Context(), id, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

func (h HandlerSet) DeleteProduct(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
