package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"shoplite/internal/config"
	"shoplite/internal/database"
	"shoplite/internal/handlers"
	"shoplite/internal/middleware"
	"shoplite/internal/models"
	"shoplite/internal/repositories"
	"shoplite/internal/services"
	"shoplite/pkg/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

const maxBodySize = 10 * 1024 * 1024

type options struct {
	db        *gorm.DB
	gateway   payment.Gateway
	publisher services.EventPublisher
	fs        afero.Fs
	quiet     bool
}

// Option customizes the dependencies New builds.
type Option func(*options)

// WithDB uses db instead of opening the configured database. The caller keeps
// ownership of db.
func WithDB(db *gorm.DB) Option {
	return func(o *options) { o.db = db }
}

// WithPaymentGateway replaces the Stripe gateway.
func WithPaymentGateway(g payment.Gateway) Option {
	return func(o *options) { o.gateway = g }
}

// WithPublisher enables order events.
func WithPublisher(p services.EventPublisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithFilesystem stores uploads on fs instead of the OS filesystem.
func WithFilesystem(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithoutRequestLog disables the request logger middleware.
func WithoutRequestLog() Option {
	return func(o *options) { o.quiet = true }
}

// App is the assembled service.
type App struct {
	Fiber *fiber.App
	DB    *gorm.DB

	cfg        config.Config
	ownsDB     bool
	auth       *services.AuthService
	products   *services.ProductService
	categories *services.CategoryService
}

// New opens and migrates the database, then wires repositories, services and
// HTTP routes.
func New(cfg config.Config, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	db, ownsDB := o.db, false
	if db == nil {
		var err error
		if db, err = database.Open(cfg.Database); err != nil {
			return nil, err
		}
		ownsDB = true
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	gateway := o.gateway
	if gateway == nil && cfg.Payment.StripeAPIKey != "" {
		gateway = payment.NewStripeGateway(cfg.Payment.StripeAPIKey, cfg.Payment.StripeAPIURL)
	}
	if gateway == nil {
		log.Println("STRIPE_API_KEY not set, payment endpoints are disabled")
	}

	fs := o.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	repos := repositories.NewGORMRepositories(db)
	txm := repositories.NewGORMTxManager(db)

	authService := services.NewAuthService(txm, repos.Users, cfg.Auth)
	productService := services.NewProductService(repos.Products, repos.Categories)
	categoryService := services.NewCategoryService(repos.Categories)
	cartService := services.NewCartService(txm)
	orderService := services.NewOrderService(txm, repos.Orders, o.publisher)
	paymentService := services.NewPaymentService(gateway, cfg.Payment.Currency)
	uploadService := services.NewUploadService(fs, cfg.Upload.Dir)

	server := fiber.New(fiber.Config{
		AppName:      "shoplite",
		BodyLimit:    maxBodySize,
		ErrorHandler: errorHandler,
	})

	server.Use(recover.New())
	if !o.quiet {
		server.Use(logger.New())
	}
	server.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	server.Get("/health", healthHandler(db))

	api := server.Group("/api")
	auth := middleware.AuthRequired(authService)
	admin := middleware.RequireRole(models.RoleAdmin)

	handlers.NewAuthHandler(authService).RegisterRoutes(api, auth)
	handlers.NewProductHandler(productService).RegisterRoutes(api, auth, admin)
	handlers.NewCategoryHandler(categoryService).RegisterRoutes(api, auth, admin)
	handlers.NewCartHandler(cartService).RegisterRoutes(api, auth)
	handlers.NewOrderHandler(orderService).RegisterRoutes(api, auth, admin)
	handlers.NewPaymentHandler(paymentService).RegisterRoutes(api, auth)
	handlers.NewUploadHandler(uploadService, cfg.Upload.PublicBaseURL).RegisterRoutes(api, auth, admin)

	return &App{
		Fiber:      server,
		DB:         db,
		cfg:        cfg,
		ownsDB:     ownsDB,
		auth:       authService,
		products:   productService,
		categories: categoryService,
	}, nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, code, dbStatus := "healthy", fiber.StatusOK, "connected"
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			log.Printf("Health check failed: %v", err)
			status, code, dbStatus = "unhealthy", fiber.StatusServiceUnavailable, "unreachable"
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
		})
	}
}

// Seed creates the roles and the admin account, and the sample catalog when
// enabled and the catalog is empty.
func (a *App) Seed(ctx context.Context) error {
	if err := a.auth.EnsureRoles(ctx); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	if a.cfg.Seed.AdminEmail != "" && a.cfg.Seed.AdminPassword != "" {
		created, err := a.auth.EnsureAdmin(ctx, a.cfg.Seed.AdminEmail, a.cfg.Seed.AdminPassword)
		if err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		if created {
			log.Printf("Created admin user %s", a.cfg.Seed.AdminEmail)
		}
	} else {
		log.Println("ADMIN_PASSWORD not set, skipping admin user")
	}

	if !a.cfg.Seed.Products {
		return nil
	}
	return a.seedCatalog(ctx)
}

type sampleProduct struct {
	name, description, price string
	stock                    int
	category                 string
}

var sampleCatalog = []sampleProduct{
	{"Laptop", "High performance laptop", "1200.00", 10, "Electronics"},
	{"Keyboard", "Mechanical keyboard", "75.00", 25, "Accessories"},
	{"Mouse", "Ergonomic wireless mouse", "25.00", 50, "Accessories"},
}

func (a *App) seedCatalog(ctx context.Context) error {
	page, err := a.products.ListProducts(ctx, repositories.ProductFilter{Size: 1})
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if page.Total > 0 {
		return nil
	}

	existing, err := a.categories.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	categoryIDs := map[string]uint{}
	for _, c := range existing {
		categoryIDs[c.Name] = c.ID
	}
	for _, p := range sampleCatalog {
		if _, ok := categoryIDs[p.category]; ok {
			continue
		}
		category, err := a.categories.CreateCategory(ctx, p.category, "")
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", p.category, err)
		}
		categoryIDs[p.category] = category.ID
	}

	for _, p := range sampleCatalog {
		categoryID := categoryIDs[p.category]
		product, err := a.products.CreateProduct(ctx, services.ProductInput{
			Name:        p.name,
			Description: p.description,
			Price:       decimal.RequireFromString(p.price),
			Stock:       p.stock,
			CategoryID:  &categoryID,
		})
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.name, err)
		}
		log.Printf("Seeded product: %s (ID: %d)", product.Name, product.ID)
	}
	return nil
}

// Close releases the database when New opened it.
func (a *App) Close() error {
	if !a.ownsDB {
		return nil
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
