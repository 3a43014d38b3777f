package notifications

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

type ntfyTransport struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyTransport) name() string { return "ntfy" }

func (n *ntfyTransport) deliver(ctx context.Context, msg Message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.Text))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/markdown; charset=utf-8")
	req.Header.Set("Markdown", "yes")
	if msg.Subject != "" {
		req.Header.Set("Title", mime.BEncoding.Encode("utf-8", msg.Subject))
	}
	if len(msg.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.Tags, ","))
	}
	if msg.Priority != "" && msg.Priority != "default" {
		req.Header.Set("Priority", msg.Priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return responseError("ntfy", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
