package avatar

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/filipal/fitspace-backend-radno/internal/response"
)

// UserChecker confirms the parent user exists before any avatar row is
// touched.
type UserChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

type Handler struct {
	service *Service
	users   UserChecker
}

func NewHandler(service *Service, users UserChecker) *Handler {
	return &Handler{service: service, users: users}
}

// RegisterRoutes mounts the avatar endpoints on the /api/v1 group.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/users/:id/avatars", h.listAvatars)
	router.Post("/users/:id/avatars", h.createAvatar)
	router.Get("/users/:id/avatars/:avatarId", h.getAvatar)
	router.Patch("/users/:id/avatars/:avatarId", h.updateAvatar)
	router.Delete("/users/:id/avatars/:avatarId", h.deleteAvatar)
}

func (h *Handler) listAvatars(c *fiber.Ctx) error {
	userID, ok := h.parentUser(c)
	if !ok {
		return nil
	}

	avatars, err := h.service.ListForUser(c.UserContext(), userID)
	if err != nil {
		return h.internal(c, err, "Failed to retrieve avatars")
	}
	return response.Success(c, avatars, fmt.Sprintf("Retrieved %d avatars", len(avatars)))
}

func (h *Handler) createAvatar(c *fiber.Ctx) error {
	userID, ok := h.parentUser(c)
	if !ok {
		return nil
	}

	fields, msg := ParseFields(c.Body())
	if msg != "" {
		return response.Error(c, fiber.StatusBadRequest, msg)
	}
	if fields.IsEmpty() {
		return response.Error(c, fiber.StatusBadRequest, "No avatar fields provided")
	}

	created, err := h.service.Create(c.UserContext(), userID, fields)
	if err != nil {
		return h.internal(c, err, "Failed to create avatar")
	}
	return response.Success(c, created, "Avatar created successfully")
}

func (h *Handler) getAvatar(c *fiber.Ctx) error {
	userID, avatarID, ok := h.ids(c)
	if !ok {
		return nil
	}

	a, err := h.service.Get(c.UserContext(), userID, avatarID)
	if err == ErrNotFound {
		return response.Error(c, fiber.StatusNotFound, "Avatar not found")
	}
	if err != nil {
		return h.internal(c, err, "Failed to retrieve avatar")
	}
	return response.Success(c, a, "Avatar retrieved successfully")
}

func (h *Handler) updateAvatar(c *fiber.Ctx) error {
	userID, avatarID, ok := h.ids(c)
	if !ok {
		return nil
	}

	fields, msg := ParseFields(c.Body())
	if msg != "" {
		return response.Error(c, fiber.StatusBadRequest, msg)
	}
	if fields.IsEmpty() {
		return response.Error(c, fiber.StatusBadRequest, "No updates provided")
	}

	updated, err := h.service.Update(c.UserContext(), userID, avatarID, fields)
	if err == ErrNotFound {
		return response.Error(c, fiber.StatusNotFound, "Avatar not found")
	}
	if err != nil {
		return h.internal(c, err, "Failed to update avatar")
	}
	return response.Success(c, updated, "Avatar updated successfully")
}

func (h *Handler) deleteAvatar(c *fiber.Ctx) error {
	userID, avatarID, ok := h.ids(c)
	if !ok {
		return nil
	}

	err := h.service.Delete(c.UserContext(), userID, avatarID)
	if err == ErrNotFound {
		return response.Error(c, fiber.StatusNotFound, "Avatar not found")
	}
	if err != nil {
		return h.internal(c, err, "Failed to delete avatar")
	}
	return response.Success(c, fiber.Map{"id": avatarID}, "Avatar deleted successfully")
}

// parentUser parses the :id segment and verifies the user exists. When it
// returns ok=false the response has already been written.
func (h *Handler) parentUser(c *fiber.Ctx) (int, bool) {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil || userID <= 0 {
		_ = response.Error(c, fiber.StatusBadRequest, "Invalid user ID format")
		return 0, false
	}

	exists, err := h.users.Exists(c.UserContext(), userID)
	if err != nil {
		_ = h.internal(c, err, "Failed to verify user")
		return 0, false
	}
	if !exists {
		_ = response.Error(c, fiber.StatusNotFound, "User not found")
		return 0, false
	}
	return userID, true
}

func (h *Handler) ids(c *fiber.Ctx) (userID, avatarID int, ok bool) {
	userID, ok = h.parentUser(c)
	if !ok {
		return 0, 0, false
	}
	avatarID, err := strconv.Atoi(c.Params("avatarId"))
	if err != nil || avatarID <= 0 {
		_ = response.Error(c, fiber.StatusBadRequest, "Invalid avatar ID format")
		return 0, 0, false
	}
	return userID, avatarID, true
}

func (h *Handler) internal(c *fiber.Ctx, err error, message string) error {
	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error(message)
	return response.ErrorWithDetails(c, fiber.StatusInternalServerError, message, err.Error())
}
