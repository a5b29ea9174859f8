package response

import (
	"github.com/gofiber/fiber/v2"
)

// Pagination describes the slice of a collection a list response covers.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

type successBody struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type errorBody struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
	Details    string `json:"details,omitempty"`
}

// NewPagination derives the page metadata from a limit/offset window and the
// total row count. limit must already be clamped to >= 1 by the caller.
func NewPagination(limit, offset, totalCount int) Pagination {
	page := offset/limit + 1
	return Pagination{
		Page:        page,
		Limit:       limit,
		TotalCount:  totalCount,
		TotalPages:  (totalCount + limit - 1) / limit,
		HasNext:     page*limit < totalCount,
		HasPrevious: page > 1,
	}
}

// Success writes a 200 success envelope. message may be empty.
func Success(c *fiber.Ctx, data any, message string) error {
	return c.Status(fiber.StatusOK).JSON(successBody{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// Paginated writes a 200 success envelope carrying pagination metadata.
func Paginated(c *fiber.Ctx, data any, p Pagination, message string) error {
	return c.Status(fiber.StatusOK).JSON(successBody{
		Success:    true,
		Data:       data,
		Message:    message,
		Pagination: &p,
	})
}

// Error writes an error envelope whose HTTP status matches statusCode.
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(errorBody{
		Error:      message,
		StatusCode: statusCode,
	})
}

// ErrorWithDetails is Error plus a free-form details string (usually the
// stringified underlying cause).
func ErrorWithDetails(c *fiber.Ctx, statusCode int, message, details string) error {
	return c.Status(statusCode).JSON(errorBody{
		Error:      message,
		StatusCode: statusCode,
		Details:    details,
	})
}
