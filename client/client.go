// Package client sweetshop API の型付き HTTP クライアント
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sweetshop/dto"
)

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sweetshop: %d %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		session:    session,
	}
	if c.session == nil {
		c.session = NewSession("")
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *Session {
	return c.session
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
}

func (c *Client) Register(ctx context.Context, input dto.RegisterInput) (*dto.UserResponse, error) {
	return c.authenticate(ctx, "/api/auth/register", input)
}

func (c *Client) Login(ctx context.Context, email, password string) (*dto.UserResponse, error) {
	return c.authenticate(ctx, "/api/auth/login", dto.LoginInput{Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, body interface{}) (*dto.UserResponse, error) {
	var res dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, path, body, &res); err != nil {
		return nil, err
	}
	if err := c.session.Set(res.Token, res.User); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Logout サーバー側の呼び出しが失敗してもローカルのセッションは必ず破棄する
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	if clearErr := c.session.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	var user dto.UserResponse
	if err := c.doData(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListSweets(ctx context.Context, page dto.PageQuery) ([]dto.SweetResponse, error) {
	q := url.Values{}
	addPage(q, page)
	var sweets []dto.SweetResponse
	if err := c.doData(ctx, http.MethodGet, withQuery("/api/sweets", q), nil, &sweets); err != nil {
		return nil, err
	}
	return sweets, nil
}

func (c *Client) SearchSweets(ctx context.Context, query dto.SearchSweetsQuery) ([]dto.SweetResponse, error) {
	q := url.Values{}
	if query.Name != "" {
		q.Set("name", query.Name)
	}
	if query.Category != "" {
		q.Set("category", query.Category)
	}
	if query.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*query.MinPrice, 'f', -1, 64))
	}
	if query.MaxPrice != nil {
		q.Set("maxPrice", strconv.FormatFloat(*query.MaxPrice, 'f', -1, 64))
	}
	addPage(q, query.PageQuery)

	var sweets []dto.SweetResponse
	if err := c.doData(ctx, http.MethodGet, withQuery("/api/sweets/search", q), nil, &sweets); err != nil {
		return nil, err
	}
	return sweets, nil
}

func (c *Client) GetSweet(ctx context.Context, id string) (*dto.SweetResponse, error) {
	return c.sweet(ctx, http.MethodGet, "/api/sweets/"+url.PathEscape(id), nil)
}

func (c *Client) CreateSweet(ctx context.Context, input dto.CreateSweetInput) (*dto.SweetResponse, error) {
	return c.sweet(ctx, http.MethodPost, "/api/sweets", input)
}

func (c *Client) UpdateSweet(ctx context.Context, id string, input dto.UpdateSweetInput) (*dto.SweetResponse, error) {
	return c.sweet(ctx, http.MethodPut, "/api/sweets/"+url.PathEscape(id), input)
}

func (c *Client) DeleteSweet(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/sweets/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Purchase(ctx context.Context, id string, quantity int) (*dto.SweetResponse, error) {
	return c.sweet(ctx, http.MethodPost, "/api/sweets/"+url.PathEscape(id)+"/purchase", dto.StockInput{Quantity: quantity})
}

func (c *Client) Restock(ctx context.Context, id string, quantity int) (*dto.SweetResponse, error) {
	return c.sweet(ctx, http.MethodPost, "/api/sweets/"+url.PathEscape(id)+"/restock", dto.StockInput{Quantity: quantity})
}

func (c *Client) CheckStock(ctx context.Context, id string) (*dto.StockResponse, error) {
	var stock dto.StockResponse
	if err := c.doData(ctx, http.MethodGet, "/api/sweets/"+url.PathEscape(id)+"/stock", nil, &stock); err != nil {
		return nil, err
	}
	return &stock, nil
}

func (c *Client) LowStock(ctx context.Context, threshold *int) ([]dto.SweetResponse, error) {
	q := url.Values{}
	if threshold != nil {
		q.Set("threshold", strconv.Itoa(*threshold))
	}
	var sweets []dto.SweetResponse
	if err := c.doData(ctx, http.MethodGet, withQuery("/api/sweets/low-stock", q), nil, &sweets); err != nil {
		return nil, err
	}
	return sweets, nil
}

func (c *Client) Statistics(ctx context.Context) (*dto.StatisticsResponse, error) {
	var stats dto.StatisticsResponse
	if err := c.doData(ctx, http.MethodGet, "/api/sweets/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) sweet(ctx context.Context, method, path string, body interface{}) (*dto.SweetResponse, error) {
	var sweet dto.SweetResponse
	if err := c.doData(ctx, method, path, body, &sweet); err != nil {
		return nil, err
	}
	return &sweet, nil
}

// doData レスポンスの data フィールドを out にデコードする
func (c *Client) doData(ctx context.Context, method, path string, body, out interface{}) error {
	var env envelope
	if err := c.do(ctx, method, path, body, &env); err != nil {
		return err
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var env envelope
		if json.Unmarshal(raw, &env) == nil && env.Message != "" {
			apiErr.Message = env.Message
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func addPage(q url.Values, page dto.PageQuery) {
	if page.Page > 0 {
		q.Set("page", strconv.Itoa(page.Page))
	}
	if page.Limit > 0 {
		q.Set("limit", strconv.Itoa(page.Limit))
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
