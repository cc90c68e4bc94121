// Package client translates typed catalog operations into HTTP requests
// against the product backend and maps wire entities to domain models.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"product-catalog/internal/config"
	"product-catalog/internal/domain"
	"product-catalog/internal/query"
)

// Repository defines the catalog operations the store depends on.
type Repository interface {
	List(ctx context.Context, q domain.FilterQuery) (domain.ProductPage, error)
	GetByID(ctx context.Context, id int64) (domain.Product, error)
	Search(ctx context.Context, term string) ([]domain.Product, error)
	Create(ctx context.Context, draft domain.ProductDraft) (domain.Product, error)
	Update(ctx context.Context, id int64, draft domain.ProductDraft) (domain.Product, error)
	Delete(ctx context.Context, id int64) error
	ResolveImageURL(ref string) string
}

// Client is the HTTP implementation of Repository.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a new catalog client with a uniform request timeout.
func New(cfg config.BackendConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// List fetches one page of products for the given query.
func (c *Client) List(ctx context.Context, q domain.FilterQuery) (domain.ProductPage, error) {
	const op = "list products"

	var envelope pageEntity
	if err := c.getJSON(ctx, op, "/products", query.Values(q), &envelope); err != nil {
		return domain.ProductPage{}, err
	}

	return domain.ProductPage{
		Products:   toDomainList(envelope.Products),
		Page:       envelope.Page,
		PageSize:   envelope.PageSize,
		TotalItems: envelope.Total,
		TotalPages: envelope.TotalPages,
	}, nil
}

// GetByID fetches a single product.
func (c *Client) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	const op = "get product"

	var entity productEntity
	if err := c.getJSON(ctx, op, fmt.Sprintf("/products/%d", id), nil, &entity); err != nil {
		return domain.Product{}, err
	}
	return toDomain(entity), nil
}

// Search returns the full (unpaginated) list of products matching the term.
// An absent or null response body is treated as an empty result.
func (c *Client) Search(ctx context.Context, term string) ([]domain.Product, error) {
	const op = "search products"

	params := url.Values{}
	params.Set("name", term)

	var entities []productEntity
	if err := c.getJSON(ctx, op, "/products/search", params, &entities); err != nil {
		return nil, err
	}
	return toDomainList(entities), nil
}

// Create submits a new product. The body is multipart form data when an
// image file is attached, JSON otherwise. The backend assigns the id and
// created-at timestamp.
func (c *Client) Create(ctx context.Context, draft domain.ProductDraft) (domain.Product, error) {
	return c.submit(ctx, "create product", http.MethodPost, "/products", draft)
}

// Update replaces an existing product.
func (c *Client) Update(ctx context.Context, id int64, draft domain.ProductDraft) (domain.Product, error) {
	return c.submit(ctx, "update product", http.MethodPut, fmt.Sprintf("/products/%d", id), draft)
}

// Delete removes a product by id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	const op = "delete product"

	resp, err := c.do(ctx, op, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkStatus(op, resp)
}

// ResolveImageURL turns a stored image reference into an absolute URL.
// Blank references resolve to ""; absolute URLs pass through unchanged;
// relative paths have one leading "/uploads/" stripped and are joined to
// the configured base with exactly one slash, matching the backend's
// storage layout.
func (c *Client) ResolveImageURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}

	path := ref
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	path = strings.TrimPrefix(path, "/uploads/")
	path = strings.TrimPrefix(path, "/")

	return c.baseURL + "/" + path
}

func (c *Client) submit(ctx context.Context, op, method, path string, draft domain.ProductDraft) (domain.Product, error) {
	var (
		body        *bytes.Buffer
		contentType string
	)

	if draft.ImageFile != nil {
		var err error
		body, contentType, err = encodeMultipart(draft)
		if err != nil {
			return domain.Product{}, transportErr(op, err)
		}
	} else {
		entity, err := toDraftEntity(draft)
		if err != nil {
			return domain.Product{}, transportErr(op, err)
		}
		body = &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(entity); err != nil {
			return domain.Product{}, transportErr(op, err)
		}
		contentType = "application/json"
	}

	resp, err := c.do(ctx, op, method, path, nil, body, contentType)
	if err != nil {
		return domain.Product{}, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(op, resp); err != nil {
		return domain.Product{}, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Product{}, transportErr(op, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.Product{}, fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	var entity productEntity
	if err := json.Unmarshal(data, &entity); err != nil {
		return domain.Product{}, transportErr(op, fmt.Errorf("failed to decode response: %w", err))
	}
	return toDomain(entity), nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, params url.Values, out any) error {
	resp, err := c.do(ctx, op, http.MethodGet, path, params, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(op, resp); err != nil {
		return err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportErr(op, err)
	}
	// null or empty bodies decode to the zero value; Search relies on this
	// to treat an absent list as empty
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return transportErr(op, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, body io.Reader, contentType string) (*http.Response, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, transportErr(op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, transportErr(op, err)
	}

	c.logger.Debug("Backend request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

func (c *Client) checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return statusErr(op, resp.StatusCode)
}

// IsNotFound reports whether err is a 404-class failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
