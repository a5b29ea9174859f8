package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/filipal/fitspace-backend-radno/internal/avatar"
	"github.com/filipal/fitspace-backend-radno/internal/config"
	"github.com/filipal/fitspace-backend-radno/internal/database"
	"github.com/filipal/fitspace-backend-radno/internal/response"
	"github.com/filipal/fitspace-backend-radno/internal/status"
	"github.com/filipal/fitspace-backend-radno/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// The server still boots when the database is unreachable: /status keeps
	// answering and /api/v1 returns 503 until a restart succeeds.
	db := openDB(cfg)
	if db != nil {
		defer db.Close()
	}

	app := newApp(cfg, db, func(ctx context.Context) (*sql.DB, error) {
		return connect(ctx, cfg)
	})

	if err := app.Listen(cfg.Addr); err != nil {
		logrus.WithError(err).Fatal("Server stopped")
	}
}

func newApp(cfg config.Config, db *sql.DB, connector status.Connector) *fiber.App {
	app := fiber.New()
	setupCORS(app)

	// True preflights (OPTIONS with Origin and Access-Control-Request-Method)
	// are answered 204 by the cors middleware before routing; this route
	// acknowledges plain OPTIONS requests. Neither touches the database.
	app.Options("/*", func(c *fiber.Ctx) error {
		return response.Success(c, fiber.Map{"message": "CORS preflight"}, "")
	})

	statusHandler := status.NewHandler(cfg.Environment, db, connector)
	statusHandler.RegisterRoutes(app)

	v1 := app.Group("/api/v1", requireDatabase(db))

	if db != nil {
		userService := user.NewService(user.NewPostgresRepository(db))
		avatarService := avatar.NewService(avatar.NewPostgresRepository(db))

		avatarHandler := avatar.NewHandler(avatarService, userService)
		userHandler := user.NewHandler(userService, avatarService)

		userHandler.RegisterRoutes(v1)
		avatarHandler.RegisterRoutes(v1)
	}

	app.Use(func(c *fiber.Ctx) error {
		return response.Error(c, fiber.StatusNotFound,
			fmt.Sprintf("Route not found: %s %s", c.Method(), c.Path()))
	})

	return app
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

// requireDatabase gates /api/v1 on the presence of an established connection.
func requireDatabase(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db == nil {
			return response.Error(c, fiber.StatusServiceUnavailable,
				"Database connection required but not available")
		}
		return c.Next()
	}
}

func openDB(cfg config.Config) *sql.DB {
	db, err := connect(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Error("Starting without a database connection")
		return nil
	}

	if err := database.EnsureSchema(context.Background(), db); err != nil {
		logrus.WithError(err).Error("Schema bootstrap failed; starting without a database connection")
		db.Close()
		return nil
	}
	return db
}

func connect(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	var secrets database.SecretFetcher
	if !cfg.Database.HasDirectEnv() && cfg.Database.URL == "" && cfg.Database.SecretARN != "" {
		fetcher, err := database.NewSecretsManagerFetcher(ctx)
		if err != nil {
			return nil, err
		}
		secrets = fetcher
	}
	return database.ConnectWithRetry(ctx, cfg.Database, secrets)
}
