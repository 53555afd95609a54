package tiny

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// API is the consumer-facing contract of the upstream ERP client.
// Sync jobs depend on this interface so tests can substitute fakes.
type API interface {
	SearchProducts(ctx context.Context, term string, page int) (*SearchPage, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	GetProductStock(ctx context.Context, id int64) (*StockDetail, error)
	ListChangedProducts(ctx context.Context, since string, page int) ([]ChangedProduct, error)
	ListStockChanges(ctx context.Context, since string, page int) (*StockChangePage, error)
}

type Config struct {
	BaseURL string
	Token   string

	// MinInterval spaces consecutive requests. The vendor throttles
	// aggressively and undocumented, so the spacing is enforced here
	// for every caller, not per job.
	MinInterval    time.Duration
	RequestTimeout time.Duration

	// Snapshot-mode retry bounds (GetProductStock only).
	SnapshotBackoffInitial time.Duration
	SnapshotBackoffMax     time.Duration
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.tiny.com.br/api2"
	}
	if c.MinInterval <= 0 {
		c.MinInterval = time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.SnapshotBackoffInitial <= 0 {
		c.SnapshotBackoffInitial = 5 * time.Second
	}
	if c.SnapshotBackoffMax <= 0 {
		c.SnapshotBackoffMax = 5 * time.Minute
	}
}

// Client talks to the Tiny ERP API: form-encoded POSTs, one request in
// flight at a time, minimum spacing between consecutive calls.
type Client struct {
	cfg  Config
	http *http.Client

	mu      sync.Mutex
	limiter *rate.Limiter

	// newSnapshotBackOff builds the retry policy for one snapshot
	// fetch; swappable in tests.
	newSnapshotBackOff func() backoff.BackOff
}

func NewClient(cfg Config) *Client {
	cfg.applyDefaults()
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
	}
	c.newSnapshotBackOff = c.snapshotBackOff
	return c
}

func (c *Client) snapshotBackOff() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.SnapshotBackoffInitial
	policy.MaxInterval = c.cfg.SnapshotBackoffMax
	policy.Multiplier = 2
	// MaxInterval caps the base interval, not the randomized one, so
	// randomization would let a sleep overshoot the configured cap.
	policy.RandomizationFactor = 0
	return policy
}

var _ API = (*Client)(nil)

// post performs one serialized, paced call and returns the raw body.
func (c *Client) post(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("token", c.cfg.Token)
	form.Set("formato", "json")
	for k, vs := range params {
		for _, v := range vs {
			form.Add(k, v)
		}
	}

	target := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tiny: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%s: %w", endpoint, ErrThrottled)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tiny: %s: unexpected status %s", endpoint, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

type retornoHeader struct {
	Status string `json:"status"`
	Errors []struct {
		Message string `json:"erro"`
	} `json:"erros"`
}

// call posts to an endpoint and decodes the "retorno" envelope into
// out after checking the status field. A blocked account surfaces as
// ErrThrottled; any other upstream error as *APIError.
func (c *Client) call(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	body, err := c.post(ctx, endpoint, params)
	if err != nil {
		return err
	}

	var envelope struct {
		Retorno json.RawMessage `json:"retorno"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("tiny: %s: decoding envelope: %w", endpoint, err)
	}
	if len(envelope.Retorno) == 0 {
		return fmt.Errorf("tiny: %s: response has no retorno field", endpoint)
	}

	var header retornoHeader
	if err := json.Unmarshal(envelope.Retorno, &header); err != nil {
		return fmt.Errorf("tiny: %s: decoding status: %w", endpoint, err)
	}
	if header.Status != "OK" {
		messages := make([]string, 0, len(header.Errors))
		for _, e := range header.Errors {
			messages = append(messages, e.Message)
		}
		if isBlocked(messages) {
			return fmt.Errorf("%s: %w", endpoint, ErrThrottled)
		}
		return &APIError{Endpoint: endpoint, Messages: messages}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Retorno, out); err != nil {
		return fmt.Errorf("tiny: %s: decoding payload: %w", endpoint, err)
	}
	return nil
}

// SearchProducts fetches one page of the catalog search.
func (c *Client) SearchProducts(ctx context.Context, term string, page int) (*SearchPage, error) {
	params := url.Values{}
	params.Set("pesquisa", term)
	params.Set("pagina", strconv.Itoa(page))

	var out struct {
		Page       Number `json:"pagina"`
		TotalPages Number `json:"numero_paginas"`
		Products   []struct {
			Product Product `json:"produto"`
		} `json:"produtos"`
	}
	if err := c.call(ctx, "produtos.pesquisa.php", params, &out); err != nil {
		return nil, err
	}

	result := &SearchPage{
		Page:       int(out.Page.Float64()),
		TotalPages: int(out.TotalPages.Float64()),
	}
	if result.Page == 0 {
		result.Page = page
	}
	if result.TotalPages == 0 {
		result.TotalPages = result.Page
	}
	for _, w := range out.Products {
		result.Products = append(result.Products, w.Product)
	}
	return result, nil
}

// GetProduct fetches the full registration detail of one product.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(id, 10))

	var out struct {
		Product Product `json:"produto"`
	}
	if err := c.call(ctx, "produto.obter.php", params, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// GetProductStock fetches the per-deposit stock snapshot for one
// product. This is the one endpoint used in snapshot mode: a throttle
// signal sleeps with exponential backoff and retries the same call in
// place, because a single-item fetch has no forward progress to
// persist. Any other upstream error is returned as-is for the caller
// to interpret.
func (c *Client) GetProductStock(ctx context.Context, id int64) (*StockDetail, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(id, 10))

	operation := func() (*StockDetail, error) {
		var out struct {
			Product StockDetail `json:"produto"`
		}
		err := c.call(ctx, "produto.obter.estoque.php", params, &out)
		if errors.Is(err, ErrThrottled) {
			return nil, err
		}
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		return &out.Product, nil
	}

	// MaxElapsedTime(0) disables the library's 15-minute give-up
	// default: a snapshot fetch keeps retrying until the block lifts
	// or the context is cancelled.
	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newSnapshotBackOff()),
		backoff.WithMaxElapsedTime(0))
}

// ListChangedProducts fetches ids whose registration changed recently.
// The window is upstream-defined; since may be empty.
func (c *Client) ListChangedProducts(ctx context.Context, since string, page int) ([]ChangedProduct, error) {
	params := url.Values{}
	if since != "" {
		params.Set("dataAlteracao", since)
	}
	if page > 0 {
		params.Set("pagina", strconv.Itoa(page))
	}

	var out struct {
		Products []struct {
			Product ChangedProduct `json:"produto"`
		} `json:"produtos"`
	}
	if err := c.call(ctx, "lista.atualizacoes.produtos", params, &out); err != nil {
		return nil, err
	}

	changed := make([]ChangedProduct, 0, len(out.Products))
	for _, w := range out.Products {
		changed = append(changed, w.Product)
	}
	return changed, nil
}

// ListStockChanges fetches one page of the stock change feed starting
// at the given watermark.
func (c *Client) ListStockChanges(ctx context.Context, since string, page int) (*StockChangePage, error) {
	params := url.Values{}
	params.Set("dataAlteracao", since)
	params.Set("pagina", strconv.Itoa(page))

	var out struct {
		Page       Number `json:"pagina"`
		TotalPages Number `json:"numero_paginas"`
		Products   []struct {
			Product StockChange `json:"produto"`
		} `json:"produtos"`
	}
	if err := c.call(ctx, "lista.atualizacoes.estoque", params, &out); err != nil {
		return nil, err
	}

	result := &StockChangePage{
		Page:       int(out.Page.Float64()),
		TotalPages: int(out.TotalPages.Float64()),
	}
	if result.Page == 0 {
		result.Page = page
	}
	for _, w := range out.Products {
		result.Items = append(result.Items, w.Product)
	}
	return result, nil
}
