package prediction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
)

const predictPath = "/predict"

// Result is the typed outcome of one inference call. Transport marks
// network/timeout failures as opposed to a well-formed error response; the
// caller performs no retry either way, the next cycle starts over.
type Result struct {
	Success    bool
	Label      string
	Confidence float64
	Err        string
	Transport  bool
}

// Client talks to the remote inference endpoint. One request per call, short
// timeout, no retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

type predictRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

type predictResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	} `json:"data"`
	Message string `json:"message"`
}

// Predict base64-encodes the file at filePath and asks the inference service
// for a label and confidence.
func (c *Client) Predict(ctx context.Context, filePath string) Result {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return Result{Err: fmt.Sprintf("failed to read snapshot: %v", err)}
	}

	body, err := json.Marshal(predictRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(raw),
	})
	if err != nil {
		return Result{Err: fmt.Sprintf("failed to encode request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(body))
	if err != nil {
		return Result{Err: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Err: fmt.Sprintf("prediction request failed: %v", err), Transport: true}
	}
	defer resp.Body.Close()

	var parsed predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{Err: fmt.Sprintf("failed to decode prediction response: %v", err), Transport: true}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !parsed.Success {
		errMsg := parsed.Message
		if errMsg == "" {
			errMsg = fmt.Sprintf("HTTP status %d", resp.StatusCode)
		}
		return Result{Err: errMsg}
	}

	return Result{
		Success:    true,
		Label:      parsed.Data.Label,
		Confidence: parsed.Data.Confidence,
	}
}
