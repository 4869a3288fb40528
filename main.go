package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"remarket/app"
	"remarket/app/product"
	"remarket/infra/postgres"
	"remarket/infra/rabbitmq"
	"remarket/internal/middleware"
	"remarket/pkg/config"
	"remarket/pkg/events"
	"remarket/pkg/httperror"
	"remarket/pkg/storage"
)

type Request any
type Response any

type HandlerInterface[R Request, Res Response] interface {
	Handle(ctx context.Context, req *R) (*Res, error)
}

func handle[R Request, Res Response](handler HandlerInterface[R, Res]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req R

		if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return writeError(c, httperror.BadRequest(
				"request.invalid_body",
				"Invalid body",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ParamsParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_path_params",
				"Invalid path params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.QueryParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_query_params",
				"Invalid query params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ReqHeaderParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_headers",
				"Invalid headers",
				fiber.Map{"error": err.Error()},
			))
		}

		ctx := c.UserContext()
		// Multipart handlers need the fiber context to read uploaded files.
		ctx = context.WithValue(ctx, "fiber", c)

		res, err := handler.Handle(ctx, &req)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(res)
	}
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Errorf("failed to create logger: %w", err))
	}
	zap.ReplaceGlobals(logger)

	appConfig := config.Read()
	defer zap.L().Sync()
	zap.L().Info("app starting...")
	zap.L().Info("app config", zap.Any("appConfig", appConfig))

	fiberApp := fiber.New(fiber.Config{
		IdleTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Concurrency:  256 * 1024,
		BodyLimit:    64 * 1024 * 1024,
	})

	pgRepository := postgres.NewPgRepository(
		appConfig.PostgresHost,
		appConfig.PostgresDatabase,
		appConfig.PostgresUsername,
		appConfig.PostgresPassword,
		appConfig.PostgresPort,
	)
	defer pgRepository.Close()

	if err := pgRepository.EnsureSchema(); err != nil {
		zap.L().Fatal("Failed to ensure database schema", zap.Error(err))
	}

	imageStore := newImageStore(appConfig)

	var eventPublisher events.Publisher
	if appConfig.RabbitMQURL != "" {
		publisher, err := rabbitmq.NewRabbitMQPublisher(appConfig.RabbitMQURL, "remarket")
		if err != nil {
			zap.L().Fatal("Failed to create RabbitMQ publisher", zap.Error(err))
		}
		defer publisher.Close()
		eventPublisher = publisher
	} else {
		zap.L().Warn("RABBITMQ_URL not set, events will not be published")
	}

	if appConfig.ImageStore == "disk" {
		fiberApp.Static("/uploads", appConfig.UploadDir)
	}

	registerRoutes(fiberApp, pgRepository, imageStore, eventPublisher, appConfig)

	// Start server in a goroutine
	go func() {
		if err := fiberApp.Listen(fmt.Sprintf("0.0.0.0:%s", appConfig.Port)); err != nil {
			zap.L().Error("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	zap.L().Info("Server started on port", zap.String("port", appConfig.Port))

	gracefulShutdown(fiberApp)
}

// repository is the full persistence surface the HTTP handlers need.
type repository interface {
	app.Repository
	product.Repository
}

// registerRoutes wires every endpoint under /api/v1. Authentication is
// attached per route rather than per group so public reads never pass
// through the token check, and /users/me and /products/me are registered
// before their :id siblings so the param routes cannot shadow them.
func registerRoutes(fiberApp *fiber.App, repo repository, imageStore storage.ImageStore, eventPublisher events.Publisher, cfg *config.AppConfig) {
	tokenTTL := time.Duration(cfg.TokenTTLMinutes) * time.Minute
	authRequired := middleware.NewAuthMiddleware(cfg.JWTSecret)

	registerUserHandler := app.NewRegisterUserHandler(repo)
	loginHandler := app.NewLoginHandler(repo, cfg.JWTSecret, tokenTTL)
	getUsersHandler := app.NewGetUsersHandler(repo)
	getUserHandler := app.NewGetUserHandler(repo)
	getMeHandler := app.NewGetMeHandler(repo)

	createCategoryHandler := app.NewCreateCategoryHandler(repo)
	getCategoriesHandler := app.NewGetCategoriesHandler(repo)
	getCategoryHandler := app.NewGetCategoryHandler(repo)

	createCommunityHandler := app.NewCreateCommunityHandler(repo)
	getCommunitiesHandler := app.NewGetCommunitiesHandler(repo)
	getCommunityHandler := app.NewGetCommunityHandler(repo)
	joinCommunityHandler := app.NewJoinCommunityHandler(repo)
	leaveCommunityHandler := app.NewLeaveCommunityHandler(repo)

	createProductHandler := product.NewCreateProductHandler(repo, eventPublisher)
	getProductsHandler := product.NewGetProductsHandler(repo)
	getProductHandler := product.NewGetProductHandler(repo)
	getMyProductsHandler := product.NewGetMyProductsHandler(repo)
	updateProductHandler := product.NewUpdateProductHandler(repo, eventPublisher)
	setSoldHandler := product.NewSetSoldHandler(repo, eventPublisher)
	deleteProductHandler := product.NewDeleteProductHandler(repo, imageStore, eventPublisher)

	uploadImagesHandler := app.NewUploadProductImagesHandler(repo, imageStore, eventPublisher)
	getProductImagesHandler := app.NewGetProductImagesHandler(repo)
	deleteImageHandler := app.NewDeleteProductImageHandler(repo, imageStore, eventPublisher)

	api := fiberApp.Group("/api/v1")

	api.Post("/users", handle[app.RegisterUserRequest, app.RegisterUserResponse](registerUserHandler))
	api.Post("/token", handle[app.LoginRequest, app.LoginResponse](loginHandler))
	api.Get("/users", handle[app.GetUsersRequest, app.GetUsersResponse](getUsersHandler))
	api.Get("/users/me", authRequired, handle[app.GetMeRequest, app.GetMeResponse](getMeHandler))
	api.Get("/users/:id", handle[app.GetUserRequest, app.GetUserResponse](getUserHandler))

	api.Get("/categories", handle[app.GetCategoriesRequest, app.GetCategoriesResponse](getCategoriesHandler))
	api.Post("/categories", authRequired, handle[app.CreateCategoryRequest, app.CreateCategoryResponse](createCategoryHandler))
	api.Get("/categories/:id", handle[app.GetCategoryRequest, app.GetCategoryResponse](getCategoryHandler))

	api.Get("/communities", handle[app.GetCommunitiesRequest, app.GetCommunitiesResponse](getCommunitiesHandler))
	api.Post("/communities", authRequired, handle[app.CreateCommunityRequest, app.CreateCommunityResponse](createCommunityHandler))
	api.Get("/communities/:id", handle[app.GetCommunityRequest, app.GetCommunityResponse](getCommunityHandler))
	api.Post("/communities/:id/join", authRequired, handle[app.JoinCommunityRequest, app.JoinCommunityResponse](joinCommunityHandler))
	api.Delete("/communities/:id/leave", authRequired, handle[app.LeaveCommunityRequest, app.LeaveCommunityResponse](leaveCommunityHandler))

	api.Get("/products", handle[product.GetProductsRequest, product.GetProductsResponse](getProductsHandler))
	api.Post("/products", authRequired, handle[product.CreateProductRequest, product.CreateProductResponse](createProductHandler))
	api.Get("/products/me", authRequired, handle[product.GetMyProductsRequest, product.GetMyProductsResponse](getMyProductsHandler))
	api.Get("/products/:id", handle[product.GetProductRequest, product.GetProductResponse](getProductHandler))
	api.Put("/products/:id", authRequired, handle[product.UpdateProductRequest, product.UpdateProductResponse](updateProductHandler))
	api.Patch("/products/:id/sold", authRequired, handle[product.SetSoldRequest, product.SetSoldResponse](setSoldHandler))
	api.Delete("/products/:id", authRequired, handle[product.DeleteProductRequest, product.DeleteProductResponse](deleteProductHandler))

	api.Get("/products/:id/images", handle[app.GetProductImagesRequest, app.GetProductImagesResponse](getProductImagesHandler))
	api.Post("/products/:id/images", authRequired, handle[app.UploadProductImagesRequest, app.UploadProductImagesResponse](uploadImagesHandler))
	api.Delete("/products/:id/images/:imageId", authRequired, handle[app.DeleteProductImageRequest, app.DeleteProductImageResponse](deleteImageHandler))
}

func newImageStore(cfg *config.AppConfig) storage.ImageStore {
	switch cfg.ImageStore {
	case "s3":
		zap.L().Info("Using S3 image store", zap.String("bucket", cfg.AWSBucket))
		return storage.NewS3Store(cfg)
	default:
		zap.L().Info("Using disk image store", zap.String("dir", cfg.UploadDir))
		return storage.NewDiskStore(cfg.UploadDir)
	}
}

func gracefulShutdown(app *fiber.App) {
	// Create channel for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Wait for shutdown signal
	<-sigChan
	zap.L().Info("Shutting down server...")

	// Shutdown with 5 second timeout
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		zap.L().Error("Error during server shutdown", zap.Error(err))
	}

	zap.L().Info("Server gracefully stopped")
}

func writeError(c *fiber.Ctx, err error) error {
	var httpErr *httperror.Error
	if errors.As(err, &httpErr) {
		if httpErr.Status == fiber.StatusNoContent {
			return c.SendStatus(fiber.StatusNoContent)
		}

		payload := fiber.Map{
			"code":    httpErr.Code,
			"message": httpErr.Message,
		}

		if httpErr.Details != nil {
			payload["details"] = httpErr.Details
		}

		if httpErr.Status >= fiber.StatusInternalServerError {
			zap.L().Error("Handler returned server error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		} else {
			zap.L().Warn("Handler returned client error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		}

		return c.Status(httpErr.Status).JSON(payload)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		zap.L().Warn("Fiber validation error", zap.String("message", fiberErr.Message), zap.Error(err))
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"code":    "request.invalid",
			"message": fiberErr.Message,
		})
	}

	zap.L().Error("Unhandled error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    "internal_server_error",
		"message": "Internal server error.",
	})
}
