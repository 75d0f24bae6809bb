package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type predictRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type predictResponse struct {
	CategoryID int `json:"categoryId"`
}

// HTTPClassifier calls a remote model service with POST {baseURL}/predict.
type HTTPClassifier struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewHTTPClassifier builds a client bounded by timeout per call.
func NewHTTPClassifier(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClassifier {
	return &HTTPClassifier{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With(zap.String("component", "classifier")),
	}
}

// Predict implements Classifier. Every failure is wrapped in ErrUnavailable.
func (c *HTTPClassifier) Predict(ctx context.Context, title, description string) (int, error) {
	body, err := json.Marshal(predictRequest{Title: title, Description: description})
	if err != nil {
		return 0, fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if !ValidCategory(out.CategoryID) {
		return 0, fmt.Errorf("%w: unknown category %d", ErrUnavailable, out.CategoryID)
	}

	c.logger.Debug("category predicted",
		zap.Int("category_id", out.CategoryID),
		zap.Duration("latency", time.Since(start)),
	)
	return out.CategoryID, nil
}
