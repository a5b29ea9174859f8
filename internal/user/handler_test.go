package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/filipal/fitspace-backend-radno/internal/avatar"
)

func newTestApp(seed []User) (*fiber.App, *Service) {
	service := NewService(NewInMemoryRepository(seed))
	avatars := avatar.NewService(avatar.NewInMemoryRepository(nil))
	handler := NewHandler(service, avatars)

	app := fiber.New()
	handler.RegisterRoutes(app.Group("/api/v1"))
	return app, service
}

func decodeBody(t *testing.T, res io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(res).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return body
}

func TestCreateUser_Success(t *testing.T) {
	app, _ := newTestApp(nil)

	req := httptest.NewRequest("POST", "/api/v1/users",
		strings.NewReader(`{"name":"Jo","email":"JO@X.com"}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}

	body := decodeBody(t, res.Body)
	if body["success"] != true {
		t.Fatalf("expected success envelope, got %v", body)
	}
	data := body["data"].(map[string]any)
	if data["email"] != "jo@x.com" {
		t.Fatalf("expected lower-cased email, got %v", data["email"])
	}
	if data["phone"] != nil {
		t.Fatalf("expected null phone, got %v", data["phone"])
	}
}

func TestCreateUser_Validation(t *testing.T) {
	app, _ := newTestApp(nil)

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"missing email", `{"name":"Jo"}`, "Name and email are required"},
		{"short name", `{"name":"J","email":"j@x.com"}`, "Name must be between 2 and 100 characters"},
		{"long name", `{"name":"` + strings.Repeat("a", 101) + `","email":"j@x.com"}`, "Name must be between 2 and 100 characters"},
		{"bad email", `{"name":"Jo","email":"nope"}`, "Invalid email format"},
		{"no dot in domain", `{"name":"Jo","email":"jo@nodot"}`, "Invalid email format"},
		{"long phone", `{"name":"Jo","email":"j@x.com","phone":"` + strings.Repeat("9", 21) + `"}`, "Phone number too long"},
		{"long bio", `{"name":"Jo","email":"j@x.com","bio":"` + strings.Repeat("ب", 501) + `"}`, "Bio must be less than 500 characters"},
		{"invalid json", `{"name":`, "Invalid JSON in request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/users", strings.NewReader(tt.payload))
			req.Header.Set("Content-Type", "application/json")
			res, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if res.StatusCode != 400 {
				t.Fatalf("expected 400 got %d", res.StatusCode)
			}
			body := decodeBody(t, res.Body)
			if body["error"] != tt.want {
				t.Fatalf("expected %q got %v", tt.want, body["error"])
			}
			if body["statusCode"] != float64(400) {
				t.Fatalf("statusCode mismatch: %v", body["statusCode"])
			}
		})
	}
}

func TestCreateUser_DuplicateEmailRejected(t *testing.T) {
	app, _ := newTestApp([]User{{ID: 1, Name: "Jane", Email: "jane@x.com"}})

	req := httptest.NewRequest("POST", "/api/v1/users",
		strings.NewReader(`{"name":"Jane Again","email":"jane@x.com"}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 400 {
		t.Fatalf("expected 400 got %d", res.StatusCode)
	}
	body := decodeBody(t, res.Body)
	if body["error"] != "User with email jane@x.com already exists" {
		t.Fatalf("unexpected message: %v", body["error"])
	}
}

func TestListUsers_PaginationWindow(t *testing.T) {
	base := time.Now().UTC()
	seed := []User{
		{ID: 1, Name: "John Doe", Email: "john@x.com", CreatedAt: base.Add(-2 * time.Hour)},
		{ID: 2, Name: "Jane Doe", Email: "jane@x.com", CreatedAt: base.Add(-1 * time.Hour)},
		{ID: 3, Name: "Sam Smith", Email: "sam@x.com", CreatedAt: base},
	}
	app, _ := newTestApp(seed)

	req := httptest.NewRequest("GET", "/api/v1/users?search=doe&limit=1", nil)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}

	body := decodeBody(t, res.Body)
	data := body["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("expected 1 row, got %d", len(data))
	}
	pagination := body["pagination"].(map[string]any)
	if pagination["total_count"] != float64(2) {
		t.Fatalf("expected total_count 2, got %v", pagination["total_count"])
	}
	if pagination["has_next"] != true {
		t.Fatalf("expected has_next true, got %v", pagination["has_next"])
	}
	if pagination["page"] != float64(1) {
		t.Fatalf("expected page 1, got %v", pagination["page"])
	}
}

func TestListUsers_LimitClampedAndOffsetPage(t *testing.T) {
	seed := make([]User, 0, 15)
	base := time.Now().UTC()
	for i := 1; i <= 15; i++ {
		seed = append(seed, User{ID: i, Name: "User Number", Email: "u@x.com", CreatedAt: base.Add(time.Duration(i) * time.Second)})
	}
	app, _ := newTestApp(seed)

	req := httptest.NewRequest("GET", "/api/v1/users?limit=5&offset=10", nil)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body := decodeBody(t, res.Body)
	data := body["data"].([]any)
	if len(data) > 5 {
		t.Fatalf("limit violated: %d rows", len(data))
	}
	pagination := body["pagination"].(map[string]any)
	if pagination["page"] != float64(3) {
		t.Fatalf("expected page 3 (offset/limit+1), got %v", pagination["page"])
	}

	// out-of-range limit values are clamped, not rejected
	req = httptest.NewRequest("GET", "/api/v1/users?limit=1000", nil)
	res, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body = decodeBody(t, res.Body)
	pagination = body["pagination"].(map[string]any)
	if pagination["limit"] != float64(100) {
		t.Fatalf("expected limit clamped to 100, got %v", pagination["limit"])
	}
}

func TestListUsers_BadQueryParams(t *testing.T) {
	app, _ := newTestApp(nil)

	req := httptest.NewRequest("GET", "/api/v1/users?limit=ten", nil)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 400 {
		t.Fatalf("expected 400 got %d", res.StatusCode)
	}
	body := decodeBody(t, res.Body)
	if body["error"] != "Invalid query parameters" {
		t.Fatalf("unexpected message: %v", body["error"])
	}
}

func TestSearchUsers_TermRules(t *testing.T) {
	app, _ := newTestApp(nil)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/users/search", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 400 {
		t.Fatalf("expected 400 for missing q, got %d", res.StatusCode)
	}

	res, err = app.Test(httptest.NewRequest("GET", "/api/v1/users/search?q=a", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body := decodeBody(t, res.Body)
	if body["error"] != "Search term must be at least 2 characters" {
		t.Fatalf("unexpected message: %v", body["error"])
	}
}

func TestSearchUsers_DefaultLimitIsTwenty(t *testing.T) {
	app, _ := newTestApp([]User{{ID: 1, Name: "Jane Doe", Email: "jane@x.com"}})

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/users/search?q=doe", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}
	body := decodeBody(t, res.Body)
	pagination := body["pagination"].(map[string]any)
	if pagination["limit"] != float64(20) {
		t.Fatalf("expected default limit 20, got %v", pagination["limit"])
	}
}

func TestGetUser_IncludesAvatars(t *testing.T) {
	service := NewService(NewInMemoryRepository([]User{{ID: 1, Name: "Jane", Email: "jane@x.com"}}))
	avatarRepo := avatar.NewInMemoryRepository(nil)
	avatarService := avatar.NewService(avatarRepo)
	handler := NewHandler(service, avatarService)

	app := fiber.New()
	handler.RegisterRoutes(app.Group("/api/v1"))

	display := "Main"
	if _, err := avatarRepo.Create(context.Background(), 1, avatar.Fields{DisplayName: toNullString(display)}); err != nil {
		t.Fatalf("seed avatar failed: %v", err)
	}

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/users/1", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}
	body := decodeBody(t, res.Body)
	data := body["data"].(map[string]any)
	avatars := data["avatars"].([]any)
	if len(avatars) != 1 {
		t.Fatalf("expected 1 avatar, got %d", len(avatars))
	}
}

func TestGetUser_NotFoundAndBadID(t *testing.T) {
	app, _ := newTestApp(nil)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/users/99", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 404 {
		t.Fatalf("expected 404 got %d", res.StatusCode)
	}
	body := decodeBody(t, res.Body)
	if body["error"] != "User not found" {
		t.Fatalf("unexpected message: %v", body["error"])
	}

	res, err = app.Test(httptest.NewRequest("GET", "/api/v1/users/abc", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 400 {
		t.Fatalf("expected 400 for non-numeric id, got %d", res.StatusCode)
	}
}

func TestUpdateUser_PartialOnlyChangesSuppliedFields(t *testing.T) {
	phone := "111"
	app, service := newTestApp([]User{{ID: 1, Name: "Jane", Email: "jane@x.com", Phone: &phone}})

	req := httptest.NewRequest("PUT", "/api/v1/users/1",
		strings.NewReader(`{"name":"Janet"}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}

	updated, err := service.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if updated.Name != "Janet" {
		t.Fatalf("expected name updated, got %q", updated.Name)
	}
	if updated.Phone == nil || *updated.Phone != "111" {
		t.Fatalf("unsupplied phone changed: %v", updated.Phone)
	}
}

func TestCreateUser_LengthLimitsCountCharacters(t *testing.T) {
	app, _ := newTestApp(nil)

	// 300 two-byte runes: 600 bytes, well within the 500-character bio limit.
	payload := `{"name":"` + strings.Repeat("ก", 60) + `","email":"thai@x.com","bio":"` + strings.Repeat("é", 300) + `"}`
	req := httptest.NewRequest("POST", "/api/v1/users", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}

	body := decodeBody(t, res.Body)
	data := body["data"].(map[string]any)
	if data["name"] != strings.Repeat("ก", 60) {
		t.Fatalf("name mangled: %v", data["name"])
	}
}

func TestSearchUsers_TermLengthCountsCharacters(t *testing.T) {
	app, _ := newTestApp(nil)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/users/search?q=%C3%A9%C3%A9", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 for two-rune term, got %d", res.StatusCode)
	}
}

func TestUpdateUser_ExplicitNullClearsOptionalField(t *testing.T) {
	phone := "111"
	bio := "about"
	app, service := newTestApp([]User{{ID: 1, Name: "Jane", Email: "jane@x.com", Phone: &phone, Bio: &bio}})

	req := httptest.NewRequest("PUT", "/api/v1/users/1", strings.NewReader(`{"phone":null}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}

	updated, err := service.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if updated.Phone != nil {
		t.Fatalf("expected phone cleared, got %v", *updated.Phone)
	}
	if updated.Bio == nil || *updated.Bio != "about" {
		t.Fatalf("unsupplied bio changed: %v", updated.Bio)
	}
}

func TestUpdateUser_NullNameRejected(t *testing.T) {
	app, _ := newTestApp([]User{{ID: 1, Name: "Jane", Email: "jane@x.com"}})

	req := httptest.NewRequest("PUT", "/api/v1/users/1", strings.NewReader(`{"name":null}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 400 {
		t.Fatalf("expected 400 got %d", res.StatusCode)
	}
	body := decodeBody(t, res.Body)
	if body["error"] != "Name cannot be empty" {
		t.Fatalf("unexpected message: %v", body["error"])
	}
}

func TestUpdateUser_EmptyPatchRejected(t *testing.T) {
	app, _ := newTestApp([]User{{ID: 1, Name: "Jane", Email: "jane@x.com"}})

	req := httptest.NewRequest("PUT", "/api/v1/users/1", strings.NewReader(`{"unknown":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 400 {
		t.Fatalf("expected 400 got %d", res.StatusCode)
	}
	body := decodeBody(t, res.Body)
	if body["error"] != "No valid fields to update" {
		t.Fatalf("unexpected message: %v", body["error"])
	}
}

func TestDeleteUser_NonexistentReturns404(t *testing.T) {
	app, _ := newTestApp(nil)

	res, err := app.Test(httptest.NewRequest("DELETE", "/api/v1/users/5", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 404 {
		t.Fatalf("expected 404 got %d", res.StatusCode)
	}
}

func toNullString(s string) *sql.NullString {
	return &sql.NullString{String: s, Valid: true}
}
