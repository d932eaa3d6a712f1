// SPDX-License-Identifier: MIT

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiNotifier posts to a generic transactional-email HTTP endpoint.
type apiNotifier struct {
	url  string
	key  string
	from string
	http *http.Client
}

func newAPINotifier(cfg Config) *apiNotifier {
	return &apiNotifier{
		url:  cfg.APIURL,
		key:  cfg.APIKey,
		from: cfg.From,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type apiPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (n *apiNotifier) Notify(ctx context.Context, courseCode, recipient string) error {
	payload, err := json.Marshal(apiPayload{
		From:    n.from,
		To:      recipient,
		Subject: subjectLine(courseCode),
		Text:    bodyText(courseCode),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.key)

	res, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("notify api: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("notify api: unexpected status %d: %s", res.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
