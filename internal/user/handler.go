package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/filipal/fitspace-backend-radno/internal/avatar"
	"github.com/filipal/fitspace-backend-radno/internal/response"
)

// AvatarLister supplies the avatars embedded in a single-user response.
type AvatarLister interface {
	ListForUser(ctx context.Context, userID int) ([]avatar.Avatar, error)
}

type Handler struct {
	service *Service
	avatars AvatarLister
}

func NewHandler(service *Service, avatars AvatarLister) *Handler {
	return &Handler{service: service, avatars: avatars}
}

// RegisterRoutes mounts the user endpoints on the /api/v1 group. The search
// route registers before /users/:id so it wins the exact match.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/users/search", h.searchUsers)
	router.Get("/users", h.listUsers)
	router.Post("/users", h.createUser)
	router.Get("/users/:id", h.getUser)
	router.Put("/users/:id", h.updateUser)
	router.Delete("/users/:id", h.deleteUser)
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Bio   string `json:"bio"`
}

func (h *Handler) listUsers(c *fiber.Ctx) error {
	params, err := parseListParams(c, 10)
	if err != nil {
		return response.ErrorWithDetails(c, fiber.StatusBadRequest, "Invalid query parameters", err.Error())
	}
	params.Search = strings.TrimSpace(c.Query("search"))

	users, total, err := h.service.List(c.UserContext(), params)
	if err != nil {
		return h.internal(c, err, "Failed to retrieve users")
	}

	return response.Paginated(c, users,
		response.NewPagination(params.Limit, params.Offset, total),
		fmt.Sprintf("Retrieved %d users", len(users)))
}

func (h *Handler) searchUsers(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		return response.Error(c, fiber.StatusBadRequest, "Search term is required (use ?q=search_term)")
	}
	if utf8.RuneCountInString(term) < 2 {
		return response.Error(c, fiber.StatusBadRequest, "Search term must be at least 2 characters")
	}

	params, err := parseListParams(c, 20)
	if err != nil {
		return response.ErrorWithDetails(c, fiber.StatusBadRequest, "Invalid query parameters", err.Error())
	}
	params.Search = term

	users, total, err := h.service.List(c.UserContext(), params)
	if err != nil {
		return h.internal(c, err, "Failed to search users")
	}

	return response.Paginated(c, users,
		response.NewPagination(params.Limit, params.Offset, total),
		fmt.Sprintf("Found %d users matching %q", len(users), term))
}

func (h *Handler) createUser(c *fiber.Ctx) error {
	var payload createUserRequest
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid JSON in request body")
	}

	nu, msg := validateCreatePayload(payload)
	if msg != "" {
		return response.Error(c, fiber.StatusBadRequest, msg)
	}

	created, err := h.service.Create(c.UserContext(), nu)
	if err == ErrEmailExists {
		return response.Error(c, fiber.StatusBadRequest,
			fmt.Sprintf("User with email %s already exists", nu.Email))
	}
	if err != nil {
		return h.internal(c, err, "Failed to create user")
	}

	return response.Success(c, created, "User created successfully")
}

// userWithAvatars augments the single-user payload with the user's avatars.
type userWithAvatars struct {
	User
	Avatars []avatar.Avatar `json:"avatars"`
}

func (h *Handler) getUser(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return response.Error(c, fiber.StatusBadRequest, "Invalid user ID format")
	}

	u, err := h.service.GetByID(c.UserContext(), id)
	if err == ErrNotFound {
		return response.Error(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return h.internal(c, err, "Failed to retrieve user")
	}

	avatars, err := h.avatars.ListForUser(c.UserContext(), id)
	if err != nil {
		return h.internal(c, err, "Failed to retrieve user")
	}

	return response.Success(c, userWithAvatars{User: u, Avatars: avatars}, "User retrieved successfully")
}

func (h *Handler) updateUser(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return response.Error(c, fiber.StatusBadRequest, "Invalid user ID format")
	}

	patch, msg := parseUpdatePayload(c.Body())
	if msg != "" {
		return response.Error(c, fiber.StatusBadRequest, msg)
	}
	if patch.IsEmpty() {
		return response.Error(c, fiber.StatusBadRequest, "No valid fields to update")
	}

	updated, err := h.service.Update(c.UserContext(), id, patch)
	if err == ErrNotFound {
		return response.Error(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return h.internal(c, err, "Failed to update user")
	}

	return response.Success(c, updated, "User updated successfully")
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return response.Error(c, fiber.StatusBadRequest, "Invalid user ID format")
	}

	err := h.service.Delete(c.UserContext(), id)
	if err == ErrNotFound {
		return response.Error(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return h.internal(c, err, "Failed to delete user")
	}

	return response.Success(c, fiber.Map{"id": id}, "User deleted successfully")
}

func (h *Handler) internal(c *fiber.Ctx, err error, message string) error {
	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error(message)
	return response.ErrorWithDetails(c, fiber.StatusInternalServerError, message, err.Error())
}

func parseID(c *fiber.Ctx) (int, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseListParams reads limit/offset, clamping limit to [1,100] and offset to
// >= 0.
func parseListParams(c *fiber.Ctx, defaultLimit int) (ListParams, error) {
	params := ListParams{Limit: defaultLimit}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return ListParams{}, fmt.Errorf("limit must be an integer: %q", raw)
		}
		params.Limit = limit
	}
	if params.Limit < 1 {
		params.Limit = 1
	}
	if params.Limit > 100 {
		params.Limit = 100
	}

	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return ListParams{}, fmt.Errorf("offset must be an integer: %q", raw)
		}
		params.Offset = offset
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	return params, nil
}

func validateCreatePayload(payload createUserRequest) (NewUser, string) {
	name := strings.TrimSpace(payload.Name)
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	if name == "" || email == "" {
		return NewUser{}, "Name and email are required"
	}
	if msg := checkName(name); msg != "" {
		return NewUser{}, msg
	}
	if !validEmail(email) {
		return NewUser{}, "Invalid email format"
	}

	phone := strings.TrimSpace(payload.Phone)
	if msg := checkPhone(phone); msg != "" {
		return NewUser{}, msg
	}
	bio := strings.TrimSpace(payload.Bio)
	if msg := checkBio(bio); msg != "" {
		return NewUser{}, msg
	}

	return NewUser{
		Name:  name,
		Email: email,
		Phone: emptyToNil(phone),
		Bio:   emptyToNil(bio),
	}, ""
}

// parseUpdatePayload decodes the update body with key presence preserved: an
// explicit JSON null for phone or bio clears the column, an absent key leaves
// it untouched. Unknown keys in user payloads are ignored.
func parseUpdatePayload(body []byte) (Patch, string) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Patch{}, "Invalid JSON in request body"
	}

	var patch Patch

	if rawValue, ok := raw["name"]; ok {
		v, ok := decodeString(rawValue)
		if !ok {
			return Patch{}, "Name must be a string"
		}
		name := ""
		if v != nil {
			name = strings.TrimSpace(*v)
		}
		if name == "" {
			return Patch{}, "Name cannot be empty"
		}
		if msg := checkName(name); msg != "" {
			return Patch{}, msg
		}
		patch.Name = &name
	}

	if rawValue, ok := raw["email"]; ok {
		v, ok := decodeString(rawValue)
		if !ok {
			return Patch{}, "Email must be a string"
		}
		email := ""
		if v != nil {
			email = strings.ToLower(strings.TrimSpace(*v))
		}
		if email == "" {
			return Patch{}, "Email cannot be empty"
		}
		if !validEmail(email) {
			return Patch{}, "Invalid email format"
		}
		patch.Email = &email
	}

	if rawValue, ok := raw["phone"]; ok {
		v, ok := decodeString(rawValue)
		if !ok {
			return Patch{}, "Phone must be a string"
		}
		phone := ""
		if v != nil {
			phone = strings.TrimSpace(*v)
		}
		if msg := checkPhone(phone); msg != "" {
			return Patch{}, msg
		}
		patch.Phone = &sql.NullString{String: phone, Valid: phone != ""}
	}

	if rawValue, ok := raw["bio"]; ok {
		v, ok := decodeString(rawValue)
		if !ok {
			return Patch{}, "Bio must be a string"
		}
		bio := ""
		if v != nil {
			bio = strings.TrimSpace(*v)
		}
		if msg := checkBio(bio); msg != "" {
			return Patch{}, msg
		}
		patch.Bio = &sql.NullString{String: bio, Valid: bio != ""}
	}

	return patch, ""
}

// decodeString unmarshals a raw JSON value into an optional string; JSON null
// yields a nil pointer.
func decodeString(raw json.RawMessage) (*string, bool) {
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}

// Length limits count characters, not bytes.
func checkName(name string) string {
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return "Name must be between 2 and 100 characters"
	}
	return ""
}

func checkPhone(phone string) string {
	if utf8.RuneCountInString(phone) > 20 {
		return "Phone number too long"
	}
	return ""
}

func checkBio(bio string) string {
	if utf8.RuneCountInString(bio) > 500 {
		return "Bio must be less than 500 characters"
	}
	return ""
}

// validEmail applies the same minimal shape check the API has always used:
// an @ and a dot somewhere in the domain part.
func validEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
