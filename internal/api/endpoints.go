package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

// Login выполняет form-login Spring Security.
// Успех: редирект не на /login?error; сессия остаётся в cookie jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve("/perform_login"), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, _, location, err := c.send("login", req)
	if err != nil {
		return err
	}

	switch {
	case status >= 300 && status < 400:
		loc, parseErr := url.Parse(location)
		if parseErr == nil && loc.Path == "/login" && loc.Query().Has("error") {
			return domain.ErrInvalidCredentials
		}
		return nil
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return domain.ErrInvalidCredentials
	default:
		return newStatusError(status, "")
	}
}

// Logout завершает сессию на бэкенде и очищает локальную cookie.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve("/logout"), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	_, _, _, err = c.send("logout", req)
	c.ClearSession()
	return err
}

// CurrentUser: GET /api/auth/me.
func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := c.doJSON(ctx, "auth_me", http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// RegisterCustomer: POST /api/auth/register/customer. 409 несёт текст причины в StatusError.
func (c *Client) RegisterCustomer(ctx context.Context, reg domain.CustomerRegistration) error {
	return c.doJSON(ctx, "register_customer", http.MethodPost, "/api/auth/register/customer", reg, nil)
}

// EmailExists: GET /api/auth/check-email.
func (c *Client) EmailExists(ctx context.Context, email string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	path := "/api/auth/check-email?" + url.Values{"email": {email}}.Encode()
	if err := c.doJSON(ctx, "check_email", http.MethodGet, path, nil, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

// ListShops: GET /api/customer/shops.
func (c *Client) ListShops(ctx context.Context) ([]domain.Shop, error) {
	var shops []domain.Shop
	if err := c.doJSON(ctx, "list_shops", http.MethodGet, "/api/customer/shops", nil, &shops); err != nil {
		return nil, err
	}
	return shops, nil
}

// GetFood: GET /api/customer/foods/{id}; 404/400 отображаются в domain.ErrFoodNotFound.
func (c *Client) GetFood(ctx context.Context, id int64) (domain.Food, error) {
	var food domain.Food
	err := c.doJSON(ctx, "get_food", http.MethodGet, fmt.Sprintf("/api/customer/foods/%d", id), nil, &food)
	if err != nil {
		if code := StatusCode(err); code == http.StatusNotFound || code == http.StatusBadRequest {
			return domain.Food{}, fmt.Errorf("%w: id %d", domain.ErrFoodNotFound, id)
		}
		return domain.Food{}, err
	}
	return food, nil
}

// ListFoods: GET /api/shop/foods (блюда текущего заведения).
func (c *Client) ListFoods(ctx context.Context) ([]domain.Food, error) {
	var foods []domain.Food
	if err := c.doJSON(ctx, "list_foods", http.MethodGet, "/api/shop/foods", nil, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}

// CreateFood: POST /api/shop/foods.
func (c *Client) CreateFood(ctx context.Context, food domain.Food) (domain.Food, error) {
	food.ID = 0
	var created domain.Food
	if err := c.doJSON(ctx, "create_food", http.MethodPost, "/api/shop/foods", food, &created); err != nil {
		return domain.Food{}, err
	}
	return created, nil
}

// UpdateFood: PUT /api/shop/foods/{id}.
func (c *Client) UpdateFood(ctx context.Context, id int64, food domain.Food) (domain.Food, error) {
	food.ID = id
	var updated domain.Food
	if err := c.doJSON(ctx, "update_food", http.MethodPut, fmt.Sprintf("/api/shop/foods/%d", id), food, &updated); err != nil {
		return domain.Food{}, err
	}
	return updated, nil
}

// DeleteFood: DELETE /api/shop/foods/{id}.
func (c *Client) DeleteFood(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "delete_food", http.MethodDelete, fmt.Sprintf("/api/shop/foods/%d", id), nil, nil)
}

// ToggleAvailability: POST /api/shop/foods/{id}/toggle-availability.
func (c *Client) ToggleAvailability(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "toggle_availability", http.MethodPost, fmt.Sprintf("/api/shop/foods/%d/toggle-availability", id), nil, nil)
}

// ToggleFeatured: POST /api/shop/foods/{id}/toggle-featured.
func (c *Client) ToggleFeatured(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "toggle_featured", http.MethodPost, fmt.Sprintf("/api/shop/foods/%d/toggle-featured", id), nil, nil)
}

var _ domain.FoodLookup = (*Client)(nil)

// Ping проверяет доступность бэкенда: любой HTTP-ответ считается успехом.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve("/"), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	_, _, _, err = c.send("ping", req)
	return err
}
