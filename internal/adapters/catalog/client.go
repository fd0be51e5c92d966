// Package catalog reads the published hotel catalog from a catalog service.
package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/restclient"
	"hotel_booking/internal/domain"
)

type Client struct {
	url string
	rc  *restclient.Client
}

func New(url string, rps int) (*Client, error) {
	if url == "" {
		return nil, errors.New("catalog URL is required")
	}
	return &Client{url: url, rc: restclient.New("catalog", rps, 20*time.Second)}, nil
}

// ListHotels accepts either a bare array or an object wrapping it under
// "hotels", "data" or "items". Entries that do not map to a valid hotel are skipped.
func (c *Client) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	var raw any
	if err := c.rc.Call(ctx, http.MethodGet, c.url, "hotels", nil, &raw, true); err != nil {
		return nil, errors.Wrap(err, "fetch catalog")
	}
	items := unwrapList(raw)
	out := make([]domain.Hotel, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		h := mapHotel(m)
		if err := h.Validate(); err != nil {
			log.Warn().Err(err).Msg("skipping catalog entry")
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func unwrapList(raw any) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case map[string]any:
		for _, k := range []string{"hotels", "data", "items"} {
			if l, ok := v[k].([]any); ok {
				return l
			}
		}
	}
	return nil
}
