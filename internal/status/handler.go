package status

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/filipal/fitspace-backend-radno/internal/response"
)

const (
	serviceName = "fitspace-backend"
	version     = "1.0.0"
)

// Connector establishes a database handle on demand; used by /status/db when
// the server started without a pool.
type Connector func(ctx context.Context) (*sql.DB, error)

type Handler struct {
	environment string
	db          *sql.DB // nil when the server runs degraded
	connect     Connector
}

func NewHandler(environment string, db *sql.DB, connect Connector) *Handler {
	return &Handler{environment: environment, db: db, connect: connect}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/status", h.basic)
	app.Get("/status/db", h.withDB)
}

// basic answers without touching the database.
func (h *Handler) basic(c *fiber.Ctx) error {
	return response.Success(c, fiber.Map{
		"status":      "healthy",
		"service":     serviceName,
		"timestamp":   time.Now().Unix(),
		"version":     version,
		"environment": h.environment,
		"database":    "not_tested",
	}, "")
}

func (h *Handler) withDB(c *fiber.Ctx) error {
	db := h.db
	if db == nil {
		if h.connect == nil {
			return response.Error(c, fiber.StatusServiceUnavailable, "Database connection required but not available")
		}
		fresh, err := h.connect(c.UserContext())
		if err != nil {
			logrus.WithError(err).Error("Failed to establish DB connection for health check")
			return response.ErrorWithDetails(c, fiber.StatusServiceUnavailable, "Database connection failed", err.Error())
		}
		defer fresh.Close()
		db = fresh
	}

	probeCtx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	start := time.Now()
	var probe int
	if err := db.QueryRowContext(probeCtx, "SELECT 1").Scan(&probe); err != nil {
		logrus.WithError(err).Error("Database health check failed")
		return response.ErrorWithDetails(c, fiber.StatusServiceUnavailable, "Database health check failed", err.Error())
	}
	elapsedMs := float64(time.Since(start).Microseconds()) / 1000

	return response.Success(c, fiber.Map{
		"status":      "healthy",
		"service":     serviceName,
		"timestamp":   time.Now().Unix(),
		"version":     version,
		"environment": h.environment,
		"database": fiber.Map{
			"status":           "connected",
			"response_time_ms": elapsedMs,
			"test_result":      probe,
		},
	}, "")
}
