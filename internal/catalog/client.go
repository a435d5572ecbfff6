// Package catalog is the read-only client for the restaurant collaborator.
// Responses it can't reach are upstream errors; responses that resolve to
// "not usable" (missing restaurant, missing menu) are validation errors.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"swifteats/internal/config"
	"swifteats/internal/correlation"
	"swifteats/internal/domain"
)

type Restaurant struct {
	RestaurantID int64   `json:"restaurant_id"`
	Name         string  `json:"name"`
	Cuisine      string  `json:"cuisine"`
	City         string  `json:"city"`
	Rating       float64 `json:"rating"`
	IsOpen       bool    `json:"is_open"`
}

type MenuItem struct {
	ItemID      int64           `json:"item_id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"is_available"`
}

type Client interface {
	Restaurant(ctx context.Context, restaurantID int64) (*Restaurant, error)
	Menu(ctx context.Context, restaurantID int64) ([]MenuItem, error)
}

type client struct {
	http    *http.Client
	baseURL string
}

func NewClient(cfg config.CollaboratorConfig) Client {
	return &client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
	}
}

func (c *client) Restaurant(ctx context.Context, restaurantID int64) (*Restaurant, error) {
	var r Restaurant
	url := fmt.Sprintf("%s/v1/restaurants/%d", c.baseURL, restaurantID)
	if err := c.get(ctx, url, "Restaurant not found", &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *client) Menu(ctx context.Context, restaurantID int64) ([]MenuItem, error) {
	var body struct {
		Items []MenuItem `json:"items"`
	}
	url := fmt.Sprintf("%s/v1/restaurants/%d/menu", c.baseURL, restaurantID)
	if err := c.get(ctx, url, "Menu not found", &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

func (c *client) get(ctx context.Context, url, notFoundDetail string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	correlation.Propagate(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.UpstreamError{Service: "restaurant", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.ValidationError{Detail: notFoundDetail}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.UpstreamError{Service: "restaurant", Err: err}
	}
	return nil
}
