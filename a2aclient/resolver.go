package a2aclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/davidvonthenen/a2a-simple/a2a"
	"github.com/davidvonthenen/a2a-simple/internal/httputil"
)

// CardResolver fetches an agent card from its well-known location under a
// base URL.
type CardResolver struct {
	baseURL    string
	httpClient *http.Client
}

// CardResolverOptions configures optional CardResolver behavior.
type CardResolverOptions struct {
	// HTTPClient overrides the pooled default client.
	HTTPClient *http.Client
}

// NewCardResolver constructs a resolver for the agent hosted at baseURL.
func NewCardResolver(baseURL string, optFns ...func(o *CardResolverOptions)) *CardResolver {
	opts := CardResolverOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = httputil.NewClient(httputil.DefaultConnectTimeout, httputil.DefaultResponseTimeout)
	}

	return &CardResolver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Resolve fetches and decodes the agent card.
func (r *CardResolver) Resolve(ctx context.Context) (*a2a.AgentCard, error) {
	url := r.baseURL + a2a.WellKnownCardPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build card request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch agent card from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch agent card from %s: unexpected status %d", url, resp.StatusCode)
	}

	var card a2a.AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("decode agent card from %s: %w", url, err)
	}

	return &card, nil
}
