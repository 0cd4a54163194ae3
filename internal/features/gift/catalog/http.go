package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"gift-collectibles-backend/internal/features/gift/models"
)

// HTTPProvider fetches trait catalogs from a remote catalog service:
// GET <base>/catalogs/<gift-type> returning a TraitCatalog JSON document.
type HTTPProvider struct {
	httpClient *http.Client
	baseURL    string
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

func (p *HTTPProvider) Fetch(ctx context.Context, giftType string) (*models.TraitCatalog, error) {
	endpoint := fmt.Sprintf("%s/catalogs/%s", p.baseURL, url.PathEscape(giftType))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog service returned status %d", resp.StatusCode)
	}

	var c models.TraitCatalog
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	return &c, nil
}
