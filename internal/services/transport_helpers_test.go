package services

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

// cannedTransport answers every request with a fixed status and JSON body and
// records the request bodies it saw.
type cannedTransport struct {
	mu     sync.Mutex
	status int
	body   string
	seen   []string
	paths  []string
}

func newCannedTransport(status int, body string) *cannedTransport {
	return &cannedTransport{status: status, body: body}
}

func (c *cannedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var reqBody string
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		reqBody = string(data)
	}

	c.mu.Lock()
	c.seen = append(c.seen, reqBody)
	c.paths = append(c.paths, req.URL.Path)
	c.mu.Unlock()

	return &http.Response{
		StatusCode:    c.status,
		Status:        http.StatusText(c.status),
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(strings.NewReader(c.body)),
		ContentLength: int64(len(c.body)),
		Request:       req,
	}, nil
}

func (c *cannedTransport) requests() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.seen))
	copy(out, c.seen)
	return out
}
