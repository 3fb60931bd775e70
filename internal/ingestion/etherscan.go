package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// EtherscanSourceFetcher retrieves verified contract source from an
// Etherscan-compatible API.
type EtherscanSourceFetcher struct {
	baseURL    string
	apiKey     string
	httpClient *resty.Client
}

var _ SourceFetcher = (*EtherscanSourceFetcher)(nil)

// NewEtherscanSourceFetcher creates a fetcher for the given API endpoint.
func NewEtherscanSourceFetcher(baseURL, apiKey string) *EtherscanSourceFetcher {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond)

	return &EtherscanSourceFetcher{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: client,
	}
}

// FetchSource returns the verified source for a contract address.
// Returns ErrSourceUnavailable when the contract is not verified.
func (f *EtherscanSourceFetcher) FetchSource(ctx context.Context, address string) (string, error) {
	resp, err := f.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"module":  "contract",
			"action":  "getsourcecode",
			"address": address,
			"apikey":  f.apiKey,
		}).
		Get(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("fetch source for %s: %w", address, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("fetch source for %s: unexpected status code %d", address, resp.StatusCode())
	}

	var result struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Result  []struct {
			SourceCode string `json:"SourceCode"`
		} `json:"result"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("decode source response for %s: %w", address, err)
	}

	if result.Status != "1" || len(result.Result) == 0 || result.Result[0].SourceCode == "" {
		return "", ErrSourceUnavailable
	}

	return result.Result[0].SourceCode, nil
}
