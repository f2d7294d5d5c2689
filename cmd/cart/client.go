package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bazaar-be/internal/order"
	"bazaar-be/internal/product"

	"github.com/google/uuid"
)

type client struct {
	base  string
	token string
	http  *http.Client
}

func newClient(base, token string) *client {
	return &client{
		base:  strings.TrimRight(base, "/"),
		token: token,
		http:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *client) product(id uuid.UUID) (*product.Product, error) {
	var body struct {
		Product product.Product `json:"product"`
	}
	if err := c.do(http.MethodGet, "/api/products/"+id.String(), nil, http.StatusOK, &body); err != nil {
		return nil, err
	}
	return &body.Product, nil
}

func (c *client) placeOrder(in order.CreateInput) (string, error) {
	var body struct {
		Order struct {
			OrderNumber string `json:"orderNumber"`
		} `json:"order"`
	}
	if err := c.do(http.MethodPost, "/api/orders", in, http.StatusCreated, &body); err != nil {
		return "", err
	}
	return body.Order.OrderNumber, nil
}

func (c *client) do(method, path string, in any, want int, out any) error {
	var buf bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var apiErr struct {
			Error   string   `json:"error"`
			Details []string `json:"details"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			if len(apiErr.Details) > 0 {
				return fmt.Errorf("%s (%s)", apiErr.Error, strings.Join(apiErr.Details, "; "))
			}
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
