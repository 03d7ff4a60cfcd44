package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Client is a typed client for the store backend HTTP API. All business rules
// (invite validation, pricing, provisioning) live server-side; this client only
// moves requests and maps the error envelope onto APIError.
type Client struct {
	baseURL string
	token   string

	httpClient *http.Client
	// approveClient carries a longer timeout: approval can block on
	// synchronous provisioning.
	approveClient *http.Client

	logger *slog.Logger
}

func NewClient(baseURL, botToken string, timeout, approveTimeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		token:         botToken,
		httpClient:    &http.Client{Timeout: timeout},
		approveClient: &http.Client{Timeout: approveTimeout},
		logger:        logger,
	}
}

type request struct {
	client     *http.Client
	method     string
	path       string
	query      url.Values
	body       any
	out        any
	idempotent bool
}

func (c *Client) do(ctx context.Context, req request) error {
	client := req.client
	if client == nil {
		client = c.httpClient
	}

	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, bodyReader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Authorization", "Bot "+c.token)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.idempotent {
		httpReq.Header.Set("X-Idempotency-Key", fmt.Sprintf("%s_%d", uuid.New().String(), time.Now().Unix()))
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.method, req.path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read %s %s response", req.method, req.path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseAPIError(resp.StatusCode, respBody)
		c.logger.Warn("backend returned error",
			"method", req.method,
			"path", req.path,
			"status", resp.StatusCode,
			"kind", apiErr.Kind)
		return apiErr
	}

	if req.out != nil {
		if err := json.Unmarshal(respBody, req.out); err != nil {
			return errors.Wrapf(err, "decode %s %s response", req.method, req.path)
		}
	}

	return nil
}

// GetOrCreateUser resolves the user, creating one when the invite code allows
// it. The returned language is the backend-stored preference and always wins
// over locale hints.
func (c *Client) GetOrCreateUser(ctx context.Context, telegramID int64, language, inviteCode string) (*User, error) {
	body := map[string]any{
		"telegram_id": telegramID,
		"language":    language,
		"invite_code": inviteCode,
	}

	var user User
	if err := c.do(ctx, request{method: http.MethodPost, path: "/users/", body: body, out: &user}); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) SetUserLanguage(ctx context.Context, telegramID int64, language string) error {
	body := map[string]any{"language": language}
	path := fmt.Sprintf("/users/%d/language", telegramID)
	return c.do(ctx, request{method: http.MethodPatch, path: path, body: body})
}

// ListPlans returns plans, filtered by protocol when one is given. includeAll
// also returns inactive plans (admin views).
func (c *Client) ListPlans(ctx context.Context, protocol string, includeAll bool) ([]Plan, error) {
	query := url.Values{}
	if protocol != "" {
		query.Set("type", protocol)
	}
	if includeAll {
		query.Set("all", "true")
	}

	var plans []Plan
	if err := c.do(ctx, request{method: http.MethodGet, path: "/plans", query: query, out: &plans}); err != nil {
		return nil, err
	}
	return plans, nil
}

func (c *Client) GetPlan(ctx context.Context, planID int64) (*Plan, error) {
	var plan Plan
	path := fmt.Sprintf("/plans/%d", planID)
	if err := c.do(ctx, request{method: http.MethodGet, path: path, out: &plan}); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Client) CreatePlan(ctx context.Context, plan NewPlan) (*Plan, error) {
	var created Plan
	if err := c.do(ctx, request{method: http.MethodPost, path: "/plans", body: plan, out: &created, idempotent: true}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdatePlan(ctx context.Context, planID int64, patch PlanPatch) (*Plan, error) {
	var updated Plan
	path := fmt.Sprintf("/plans/%d", planID)
	if err := c.do(ctx, request{method: http.MethodPatch, path: path, body: patch, out: &updated}); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) ListEndpoints(ctx context.Context, includeAll bool) ([]Endpoint, error) {
	query := url.Values{}
	if includeAll {
		query.Set("all", "true")
	}

	var endpoints []Endpoint
	if err := c.do(ctx, request{method: http.MethodGet, path: "/endpoints", query: query, out: &endpoints}); err != nil {
		return nil, err
	}
	return endpoints, nil
}

func (c *Client) CreateEndpoint(ctx context.Context, name, address string) (*Endpoint, error) {
	body := map[string]any{
		"name":      name,
		"address":   address,
		"is_active": true,
	}

	var created Endpoint
	if err := c.do(ctx, request{method: http.MethodPost, path: "/endpoints", body: body, out: &created, idempotent: true}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateEndpoint(ctx context.Context, endpointID int64, patch EndpointPatch) (*Endpoint, error) {
	var updated Endpoint
	path := fmt.Sprintf("/endpoints/%d", endpointID)
	if err := c.do(ctx, request{method: http.MethodPatch, path: path, body: patch, out: &updated}); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) ListSubscriptions(ctx context.Context, telegramID int64) ([]Subscription, error) {
	var subs []Subscription
	path := fmt.Sprintf("/users/%d/subscriptions", telegramID)
	if err := c.do(ctx, request{method: http.MethodGet, path: path, out: &subs}); err != nil {
		return nil, err
	}
	return subs, nil
}

// GetWGConfig downloads a rendered WireGuard config file for a subscription.
func (c *Client) GetWGConfig(ctx context.Context, telegramID, subscriptionID, endpointID int64) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/users/%d/subscriptions/%d/wg_config?endpoint_id=%d",
		c.baseURL, telegramID, subscriptionID, endpointID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Authorization", "Bot "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "GET wg_config")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read wg_config response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) CreateOrder(ctx context.Context, order CreateOrderRequest) (*OrderReceipt, error) {
	var receipt OrderReceipt
	if err := c.do(ctx, request{method: http.MethodPost, path: "/orders/", body: order, out: &receipt, idempotent: true}); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ApproveOrder triggers provisioning for a paid order. It uses the long
// timeout client and may return APIError with kind "provisioning_failed".
func (c *Client) ApproveOrder(ctx context.Context, orderID int64) (*ApproveResult, error) {
	var result ApproveResult
	path := fmt.Sprintf("/orders/%d/approve", orderID)
	req := request{
		client:     c.approveClient,
		method:     http.MethodPost,
		path:       path,
		out:        &result,
		idempotent: true,
	}
	if err := c.do(ctx, req); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) RejectOrder(ctx context.Context, orderID int64) error {
	path := fmt.Sprintf("/orders/%d/reject", orderID)
	return c.do(ctx, request{method: http.MethodPost, path: path, idempotent: true})
}

// ManualProvisionOrder lets an admin supply the connection link directly when
// automated provisioning failed.
func (c *Client) ManualProvisionOrder(ctx context.Context, orderID int64, configLink string) error {
	body := map[string]any{"config_link": configLink}
	path := fmt.Sprintf("/orders/%d/manual_provision", orderID)
	return c.do(ctx, request{method: http.MethodPost, path: path, body: body, idempotent: true})
}

func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	var settings Settings
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/settings", out: &settings}); err != nil {
		return nil, err
	}
	return &settings, nil
}
