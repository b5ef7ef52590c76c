package imagecache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// URLResolver maps a card id to its image URL. Satisfied by *catalog.Repo.
type URLResolver interface {
	ImageURL(ctx context.Context, id int64) (string, error)
}

// Cache holds fetched card images keyed by card id. Entries are filled
// lazily on first request and never evicted or invalidated; unbounded
// growth is a documented limitation of this design. Two concurrent misses
// for the same id may both fetch; the second write is idempotent.
type Cache struct {
	mu     sync.RWMutex
	images map[int64][]byte

	Resolver URLResolver
	Client   *http.Client
}

func New(resolver URLResolver, timeout time.Duration) *Cache {
	return &Cache{
		images:   make(map[int64][]byte),
		Resolver: resolver,
		Client:   &http.Client{Timeout: timeout},
	}
}

// Get returns the image bytes for id. Unknown ids fail on the store lookup
// before any network call; fetch failures are reported, not cached.
func (c *Cache) Get(ctx context.Context, id int64) ([]byte, error) {
	c.mu.RLock()
	data, ok := c.images[id]
	c.mu.RUnlock()
	if ok {
		return data, nil
	}

	url, err := c.Resolver.ImageURL(ctx, id)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image %d: status %d", id, resp.StatusCode)
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image %d: %w", id, err)
	}

	c.mu.Lock()
	c.images[id] = data
	c.mu.Unlock()
	return data, nil
}

// Len reports how many images are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}
