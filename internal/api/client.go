// Package api wraps the storefront backend's REST endpoints, one type per
// resource, on top of a shared Fiber HTTP client.
package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"

	"bazaar/internal/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Client struct {
	BaseURL string
	Timeout time.Duration

	http *fiber.Client

	Auth          *AuthAPI
	Products      *ProductAPI
	Cart          *CartAPI
	Orders        *OrderAPI
	Conversations *ConversationAPI
	Sellers       *SellerAPI
	Favorites     *FavoriteAPI
	Admin         *AdminAPI
}

func New(baseURL string, timeout time.Duration) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
		http: &fiber.Client{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
	}
	c.Auth = &AuthAPI{c: c}
	c.Products = &ProductAPI{c: c}
	c.Cart = &CartAPI{c: c}
	c.Orders = &OrderAPI{c: c}
	c.Conversations = &ConversationAPI{c: c}
	c.Sellers = &SellerAPI{c: c}
	c.Favorites = &FavoriteAPI{c: c}
	c.Admin = &AdminAPI{c: c}
	return c
}

func (c *Client) agent(method, url string) *fiber.Agent {
	switch method {
	case fiber.MethodPost:
		return c.http.Post(url)
	case fiber.MethodPut:
		return c.http.Put(url)
	case fiber.MethodPatch:
		return c.http.Patch(url)
	case fiber.MethodDelete:
		return c.http.Delete(url)
	default:
		return c.http.Get(url)
	}
}

// do performs one request. in is JSON-encoded when non-nil; out is decoded
// from a 2xx body when non-nil. The request timeout is the smaller of the
// client timeout and the context deadline.
func (c *Client) do(ctx context.Context, resource, method, path, token string, in, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a := c.agent(method, c.BaseURL+path)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if in != nil {
		a.JSON(in)
	}
	timeout := c.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); timeout <= 0 || d < timeout {
			timeout = d
		}
	}
	if timeout > 0 {
		a.Timeout(timeout)
	}

	start := time.Now()
	code, body, errs := a.Bytes()
	metrics.ObserveBackend(resource, method, code, time.Since(start))
	if len(errs) > 0 {
		return fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))
	}
	if code >= fiber.StatusBadRequest {
		return decodeError(code, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
