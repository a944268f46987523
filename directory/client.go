package directory

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

	"depletions/campaign"
	"depletions/depletion"
)

const defaultTimeout = 30 * time.Second

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL    string
	Token      string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient httpDoer
}

// HTTPClient talks JSON to the remote directory API under /api/v1.
type HTTPClient struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient httpDoer
}

var (
	_ Directory        = (*HTTPClient)(nil)
	_ campaign.Backend = (*HTTPClient)(nil)
)

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	doer := cfg.HTTPClient
	if doer == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		doer = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
	}, nil
}

type resolveProductsRequest struct {
	Codes []string `json:"codes"`
}

type resolveSellersRequest struct {
	Names []string `json:"names"`
}

type resolveResponse struct {
	IDs map[string]string `json:"ids"`
}

type validateAccountRequest struct {
	TaxID string `json:"taxId"`
	Email string `json:"email"`
}

type accountResponse struct {
	AccountID string `json:"accountId"`
}

type namedEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type createDepletionsRequest struct {
	Depletions []depletion.Submission `json:"depletions"`
}

type campaignStatus struct {
	Active bool `json:"active"`
}

type personAccountResponse struct {
	Account *campaign.PersonAccount `json:"account"`
}

func (c *HTTPClient) ResolveProductCodes(ctx context.Context, codes []string) (map[string]string, error) {
	if len(codes) == 0 {
		return map[string]string{}, nil
	}
	var out resolveResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/products/resolve", resolveProductsRequest{Codes: codes}, &out); err != nil {
		return nil, err
	}
	return nonNil(out.IDs), nil
}

func (c *HTTPClient) ResolveSellerNames(ctx context.Context, names []string) (map[string]string, error) {
	if len(names) == 0 {
		return map[string]string{}, nil
	}
	var out resolveResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/sellers/resolve", resolveSellersRequest{Names: names}, &out); err != nil {
		return nil, err
	}
	return nonNil(out.IDs), nil
}

func (c *HTTPClient) MovementTypes(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/movement-types", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ValidateAccount(ctx context.Context, taxID, email string) (string, error) {
	var out accountResponse
	payload := validateAccountRequest{TaxID: strings.TrimSpace(taxID), Email: strings.TrimSpace(email)}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/accounts/validate", payload, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.AccountID), nil
}

func (c *HTTPClient) ProductName(ctx context.Context, productID string) (string, error) {
	var out namedEntity
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/products/"+url.PathEscape(productID), nil, &out); err != nil {
		return "", err
	}
	return out.Name, nil
}

func (c *HTTPClient) SellerName(ctx context.Context, sellerID string) (string, error) {
	var out namedEntity
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/sellers/"+url.PathEscape(sellerID), nil, &out); err != nil {
		return "", err
	}
	return out.Name, nil
}

func (c *HTTPClient) CreateSeller(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("seller name must not be empty")
	}
	var out namedEntity
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/sellers", namedEntity{Name: name}, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.ID) == "" {
		return "", fmt.Errorf("create seller %q: response has no id", name)
	}
	return out.ID, nil
}

func (c *HTTPClient) CreateDepletions(ctx context.Context, depletions []depletion.Submission) error {
	if len(depletions) == 0 {
		return errors.New("create depletions payload must not be empty")
	}
	return c.doJSON(ctx, http.MethodPost, "/api/v1/depletions", createDepletionsRequest{Depletions: depletions}, nil)
}

func (c *HTTPClient) IsCampaignActive(ctx context.Context, campaignID string) (bool, error) {
	var out campaignStatus
	path := fmt.Sprintf("/api/v1/campaigns/%s/active", url.PathEscape(campaignID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return false, err
	}
	return out.Active, nil
}

func (c *HTTPClient) CampaignCatalog(ctx context.Context, campaignID string) (campaign.Catalog, error) {
	var out campaign.Catalog
	path := fmt.Sprintf("/api/v1/campaigns/%s/catalog", url.PathEscape(campaignID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return campaign.Catalog{}, err
	}
	return out, nil
}

func (c *HTTPClient) PersonAccountByEmail(ctx context.Context, email string) (*campaign.PersonAccount, error) {
	var out personAccountResponse
	path := "/api/v1/person-accounts?email=" + url.QueryEscape(strings.TrimSpace(email))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Account == nil || strings.TrimSpace(out.Account.AccountID) == "" {
		return nil, nil
	}
	return out.Account, nil
}

func (c *HTTPClient) CreateOrders(ctx context.Context, request campaign.OrderRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/orders", request, nil)
}

func (c *HTTPClient) UpdateMissingAccountFields(ctx context.Context, update campaign.AccountUpdate) error {
	path := "/api/v1/person-accounts/" + url.PathEscape(update.AccountID)
	return c.doJSON(ctx, http.MethodPatch, path, update, nil)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpointPath string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpointPath, bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, endpointPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf(
			"request %s %s failed with status %d: %s",
			method,
			endpointPath,
			resp.StatusCode,
			strings.TrimSpace(string(responseBody)),
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response %s %s: %w", method, endpointPath, err)
	}
	return nil
}

func nonNil(values map[string]string) map[string]string {
	if values == nil {
		return map[string]string{}
	}
	return values
}
