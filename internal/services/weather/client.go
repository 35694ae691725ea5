package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Current holds the current-conditions fields the simulation needs.
type Current struct {
	TempC    *float64 `json:"temp_c"`
	Humidity *float64 `json:"humidity"`
}

type apiResponse struct {
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Current Current `json:"current"`
}

// Client fetches current conditions from the weather API, keyed by a
// coordinate pair or a place name.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, httpClient: httpClient}
}

// Fetch performs one keyed GET. The query is "lat,lon" or a city name.
func (c *Client) Fetch(ctx context.Context, query string) (*Current, error) {
	reqURL := fmt.Sprintf("%s?key=%s&q=%s&aqi=no", c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching weather data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status code %d", resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("error decoding weather response: %w", err)
	}

	return &parsed.Current, nil
}
