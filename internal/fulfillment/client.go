// Package fulfillment dispatches the best-effort calls that follow a
// confirmed order: delivery assignment and customer notification. Failures
// are logged and discarded, never retried, never surfaced to the caller.
package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"swifteats/internal/config"
	"swifteats/internal/correlation"
)

const NotificationOrderConfirmed = "ORDER_CONFIRMED"

type Client struct {
	delivery     *http.Client
	notification *http.Client
	deliveryURL  string
	notifyURL    string
}

func NewClient(delivery, notification config.CollaboratorConfig) *Client {
	return &Client{
		delivery:     &http.Client{Timeout: delivery.Timeout},
		notification: &http.Client{Timeout: notification.Timeout},
		deliveryURL:  delivery.BaseURL + "/v1/deliveries/assign",
		notifyURL:    notification.BaseURL + "/v1/notifications",
	}
}

func (c *Client) AssignDelivery(ctx context.Context, orderID int64, city string) error {
	return post(ctx, c.delivery, c.deliveryURL, map[string]any{
		"order_id": orderID,
		"city":     city,
	})
}

func (c *Client) Notify(ctx context.Context, orderID int64, notificationType string) error {
	return post(ctx, c.notification, c.notifyURL, map[string]any{
		"order_id": orderID,
		"type":     notificationType,
	})
}

func post(ctx context.Context, client *http.Client, url string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	correlation.Propagate(ctx, req)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned %d", url, resp.StatusCode)
	}
	return nil
}
