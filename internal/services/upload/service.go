package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// Result is the typed outcome of an object upload.
type Result struct {
	Success  bool
	URL      string
	PublicID string
	Err      string
}

// Service uploads a local file to the object upload endpoint and returns a
// durable URL plus an opaque identifier.
type Service struct {
	endpoint   string
	folder     string
	httpClient *http.Client
}

func NewService(endpoint, folder string, httpClient *http.Client) *Service {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Service{endpoint: endpoint, folder: folder, httpClient: httpClient}
}

type uploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Message  string `json:"message"`
}

// Upload sends the file as multipart form data. publicID is an optional
// identifier hint; empty lets the remote service pick one.
func (s *Service) Upload(ctx context.Context, filePath, publicID string) Result {
	file, err := os.Open(filePath)
	if err != nil {
		return Result{Err: fmt.Sprintf("failed to open file: %v", err)}
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return Result{Err: fmt.Sprintf("failed to build form: %v", err)}
	}
	if _, err := io.Copy(part, file); err != nil {
		return Result{Err: fmt.Sprintf("failed to copy file into form: %v", err)}
	}
	if err := writer.WriteField("folder", s.folder); err != nil {
		return Result{Err: fmt.Sprintf("failed to write folder field: %v", err)}
	}
	if publicID != "" {
		if err := writer.WriteField("public_id", publicID); err != nil {
			return Result{Err: fmt.Sprintf("failed to write public_id field: %v", err)}
		}
	}
	if err := writer.Close(); err != nil {
		return Result{Err: fmt.Sprintf("failed to finalize form: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &body)
	if err != nil {
		return Result{Err: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Result{Err: fmt.Sprintf("upload request failed: %v", err)}
	}
	defer resp.Body.Close()

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{Err: fmt.Sprintf("failed to decode upload response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errMsg := parsed.Message
		if errMsg == "" {
			errMsg = fmt.Sprintf("HTTP status %d", resp.StatusCode)
		}
		return Result{Err: errMsg}
	}

	return Result{Success: true, URL: parsed.URL, PublicID: parsed.PublicID}
}
