package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cardmirror/pkg/models"
)

// ErrUnavailable covers every way the catalog source can fail a fetch:
// transport errors, a non-200 status, or a payload with no records. The
// pipeline treats them all the same way, terminal for the run.
var ErrUnavailable = errors.New("upstream catalog unavailable")

// Client fetches the full card catalog in one GET. No retry, no backoff;
// the embedded client's timeout is the only bound on the call.
type Client struct {
	URL    string
	Client *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Data []json.RawMessage `json:"data"`
}

func (c *Client) FetchAll(ctx context.Context) ([]models.CardRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrUnavailable)
	}

	records := make([]models.CardRecord, 0, len(env.Data))
	for _, raw := range env.Data {
		var rec models.CardRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			// let the pipeline count it as a skipped record
			records = append(records, models.CardRecord{Raw: raw})
			continue
		}
		rec.Raw = raw
		records = append(records, rec)
	}
	return records, nil
}
