package embeddings

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cached wraps an Embedder with an in-memory LRU over previously embedded
// texts. Keys include the model version so a model change never replays
// stale vectors. Safe for concurrent use.
type Cached struct {
	inner    Embedder
	capacity int

	mu    sync.Mutex
	ll    *list.List
	items map[string]*list.Element
}

type cacheEntry struct {
	key string
	vec []float32
}

// NewCached decorates inner with an LRU of the given capacity. A
// capacity of zero or less disables caching and returns inner unchanged.
func NewCached(inner Embedder, capacity int) Embedder {
	if capacity <= 0 {
		return inner
	}
	return &Cached{
		inner:    inner,
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Embed serves cached vectors where possible and forwards only the
// misses to the wrapped embedder, preserving input order in the result.
func (c *Cached) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var missTexts []string
	var missIdx []int

	c.mu.Lock()
	for i, text := range texts {
		key := c.cacheKey(text)
		if el, ok := c.items[key]; ok {
			c.ll.MoveToFront(el)
			out[i] = el.Value.(*cacheEntry).vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	c.mu.Unlock()

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for j, i := range missIdx {
		out[i] = vecs[j]
		c.put(c.cacheKey(texts[i]), vecs[j])
	}
	c.mu.Unlock()

	return out, nil
}

// put inserts under the lock, evicting the oldest entry at capacity.
func (c *Cached) put(key string, vec []float32) {
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*cacheEntry).vec = vec
		return
	}
	el := c.ll.PushFront(&cacheEntry{key: key, vec: vec})
	c.items[key] = el

	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

func (c *Cached) cacheKey(text string) string {
	h := sha256.New()
	h.Write([]byte(c.inner.ModelVersion()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cached) ModelVersion() string { return c.inner.ModelVersion() }

func (c *Cached) Dimensions() int { return c.inner.Dimensions() }

func (c *Cached) Close() error { return c.inner.Close() }

var _ Embedder = (*Cached)(nil)
