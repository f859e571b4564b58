package handlers

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ecobazaar/internal/config"
	"ecobazaar/internal/middleware"
	"ecobazaar/internal/models"
	"ecobazaar/internal/service"
	"ecobazaar/internal/storage"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type ObjectReader interface {
	Get(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error)
}

type Services struct {
	Auth     *service.AuthService
	Products *service.ProductService
	Orders   *service.OrderService
	Uploads  *service.UploadService
}

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *service.AuthService
	products *service.ProductService
	orders   *service.OrderService
	uploads  *service.UploadService
	objects  ObjectReader
	db       Pinger
	cache    Pinger
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, services Services, objects ObjectReader, db, cache Pinger) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     services.Auth,
		products: services.Products,
		orders:   services.Orders,
		uploads:  services.Uploads,
		objects:  objects,
		db:       db,
		cache:    cache,
	}
}

// RegisterRoutes mounts the JSON API on router, normally the base path group.
func (h HandlerSet) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	auth := router.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/token", h.Token)
	auth.POST("/forgot-password", h.ForgotPassword)
	auth.POST("/reset-password", h.ResetPassword)

	authenticated := middleware.Auth(h.auth)
	adminOnly := middleware.RequireRoles(models.UserRoleAdmin)

	products := router.Group("/products")
	products.GET("", h.ListProducts)
	products.GET("/:id", h.GetProduct)
	products.POST("/add", authenticated, adminOnly, h.CreateProduct)
	products.POST("/upload", authenticated, adminOnly, h.UploadImage)
	products.PUT("/:id", authenticated, adminOnly, h.UpdateProduct)
	products.DELETE("/:id", authenticated, adminOnly, h.DeleteProduct)

	orders := router.Group("/orders", authenticated)
	orders.POST("/create", h.CreateOrder)
	orders.GET("/my-orders", h.MyOrders)
}

// RegisterPublic mounts routes that live outside the base path.
func (h HandlerSet) RegisterPublic(router *gin.RouterGroup) {
	router.GET(storage.PublicPrefix+"*key", h.ServeUpload)
}
