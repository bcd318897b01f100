package services

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"salesdesk/internal/logger"
)

const maskedValue = "***[MASKED]***"

// DebugTransportService captures metadata about the HTTP exchanges made by inference clients.
// Bodies are not captured since every prompt carries the full dataset; only their sizes are kept.
type DebugTransportService struct {
	capturedData string
	mutex        sync.RWMutex
}

// NewDebugTransportService creates a new DebugTransportService instance.
func NewDebugTransportService() *DebugTransportService {
	return &DebugTransportService{}
}

// CreateTransport wraps base (http.DefaultTransport when nil) with request capture.
func (d *DebugTransportService) CreateTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &debugTransport{
		base:    base,
		service: d,
		now:     time.Now,
	}
}

// GetCapturedData returns the last captured exchange as a JSON string.
func (d *DebugTransportService) GetCapturedData() string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.capturedData
}

// ClearCapturedData clears the captured debug data.
func (d *DebugTransportService) ClearCapturedData() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.capturedData = ""
}

func (d *DebugTransportService) setCapturedData(data string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.capturedData = data
}

// debugTransport implements http.RoundTripper with request/response capture.
type debugTransport struct {
	base    http.RoundTripper
	service *DebugTransportService
	now     func() time.Time
}

// RoundTrip implements http.RoundTripper interface with debug capture.
func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	startTime := dt.now()
	resp, err := dt.base.RoundTrip(req)
	endTime := dt.now()

	requestData := map[string]interface{}{
		"method":         req.Method,
		"url":            sanitizeURL(req.URL),
		"headers":        sanitizeHeaders(req.Header),
		"content_length": req.ContentLength,
	}

	responseData := map[string]interface{}{}
	if err != nil {
		responseData["error"] = err.Error()
	} else {
		responseData["status_code"] = resp.StatusCode
		responseData["status"] = resp.Status
		responseData["headers"] = sanitizeHeaders(resp.Header)
		responseData["content_length"] = resp.ContentLength
	}

	debugData := map[string]interface{}{
		"http_request":  requestData,
		"http_response": responseData,
		"timing": map[string]interface{}{
			"request_time":  startTime.Format(time.RFC3339),
			"response_time": endTime.Format(time.RFC3339),
			"duration_ms":   endTime.Sub(startTime).Milliseconds(),
		},
	}

	jsonData, jsonErr := json.Marshal(debugData)
	if jsonErr != nil {
		logger.Error("Failed to marshal debug data", "error", jsonErr)
		dt.service.setCapturedData(`{"error": "failed to marshal debug data"}`)
	} else {
		dt.service.setCapturedData(string(jsonData))
	}

	logger.Debug("HTTP exchange captured", "method", req.Method, "url", requestData["url"],
		"duration", endTime.Sub(startTime), "error", err)
	return resp, err
}

// sanitizeHeaders masks credentials in header values.
func sanitizeHeaders(headers http.Header) map[string][]string {
	sanitized := make(map[string][]string, len(headers))
	for name, values := range headers {
		if isSensitiveName(name) {
			sanitized[name] = []string{maskedValue}
			continue
		}
		sanitized[name] = values
	}
	return sanitized
}

// sanitizeURL masks credentials passed as query parameters.
func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	clone := *u
	query := clone.Query()
	for name := range query {
		if isSensitiveName(name) || strings.EqualFold(name, "key") {
			query.Set(name, maskedValue)
		}
	}
	clone.RawQuery = query.Encode()
	return clone.String()
}

func isSensitiveName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "authorization") ||
		strings.Contains(lower, "api-key") ||
		strings.Contains(lower, "api_key") ||
		strings.Contains(lower, "token")
}
