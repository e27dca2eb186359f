// Package querycache keeps the client's read models keyed by query and
// tagged by entity so that a mutation can mark every dependent read stale.
package querycache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

type Tag struct {
	Type string
	// ID narrows the tag to one entity. An empty ID names the whole type.
	ID string
}

func (t Tag) String() string {
	if t.ID == "" {
		return t.Type
	}
	return t.Type + ":" + t.ID
}

// matches reports whether invalidating t touches an entry tagged with other.
func (t Tag) matches(other Tag) bool {
	if t.Type != other.Type {
		return false
	}
	return t.ID == "" || t.ID == other.ID
}

const (
	TypeProduct  = "Product"
	TypeCart     = "Cart"
	TypeWishlist = "Wishlist"
	TypeOrder    = "Order"

	// ListID tags a collection read as opposed to a single entity.
	ListID = "LIST"
)

func ProductList() Tag      { return Tag{Type: TypeProduct, ID: ListID} }
func Product(id string) Tag { return Tag{Type: TypeProduct, ID: id} }
func Cart() Tag             { return Tag{Type: TypeCart} }
func Wishlist() Tag         { return Tag{Type: TypeWishlist} }
func Order(id string) Tag   { return Tag{Type: TypeOrder, ID: id} }
func OrderList() Tag        { return Tag{Type: TypeOrder, ID: ListID} }

type entry struct {
	value any
	tags  []Tag
	stale bool
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	subs    map[int]func(key string)
	nextSub int
	// epoch advances on every invalidation; fetches started under an older
	// epoch store their result as stale.
	epoch uint64
}

func New() *Cache {
	return &Cache{entries: map[string]*entry{}, subs: map[int]func(string){}}
}

// Query returns the cached value for key, or runs fetch when the key is
// missing or stale. Concurrent calls for the same key share one fetch; a
// caller whose ctx ends stops waiting while the fetch runs on for the rest.
// A failed fetch leaves the previous entry untouched.
func Query[T any](ctx context.Context, c *Cache, key string, tags []Tag, fetch func(ctx context.Context) (T, error)) (T, error) {
	return QueryTags(ctx, c, key, func(T) []Tag { return tags }, fetch)
}

// QueryTags is Query for entries whose tags depend on the fetched value,
// such as a list tagged with the id of every entity it holds.
func QueryTags[T any](ctx context.Context, c *Cache, key string, tagsOf func(T) []Tag, fetch func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := c.fresh(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	epoch := c.currentEpoch()
	// the shared fetch outlives any single caller
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(fmt.Sprintf("%s@%d", key, epoch), func() (any, error) {
		val, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.store(key, val, tagsOf(val), epoch)
		return val, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		t, ok := r.Val.(T)
		if !ok {
			return zero, fmt.Errorf("querycache: %s holds %T", key, r.Val)
		}
		return t, nil
	}
}

// Peek returns whatever is cached for key, stale or not.
func Peek[T any](c *Cache, key string) (T, bool) {
	t, ok, _ := peek[T](c, key)
	return t, ok
}

// PeekFresh returns the cached value for key only when it is not stale.
func PeekFresh[T any](c *Cache, key string) (T, bool) {
	t, ok, stale := peek[T](c, key)
	return t, ok && !stale
}

func peek[T any](c *Cache, key string) (T, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false, false
	}
	t, ok := e.value.(T)
	return t, ok, e.stale
}

func (c *Cache) fresh(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.stale {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

func (c *Cache) store(key string, v any, tags []Tag, epoch uint64) {
	c.mu.Lock()
	c.entries[key] = &entry{value: v, tags: tags, stale: epoch != c.epoch}
	c.mu.Unlock()
	c.notify(key)
}

// Invalidate marks stale every entry carrying a tag matched by tags and
// returns the affected keys.
func (c *Cache) Invalidate(tags ...Tag) []string {
	c.mu.Lock()
	c.epoch++
	var keys []string
	for key, e := range c.entries {
		if e.stale {
			continue
		}
		if hit(tags, e.tags) {
			e.stale = true
			keys = append(keys, key)
		}
	}
	c.mu.Unlock()

	for _, k := range keys {
		c.notify(k)
	}
	return keys
}

func hit(inv, tagged []Tag) bool {
	for _, i := range inv {
		for _, t := range tagged {
			if i.matches(t) {
				return true
			}
		}
	}
	return false
}

func (c *Cache) Stale(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return !ok || e.stale
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.entries = map[string]*entry{}
	c.epoch++
	c.mu.Unlock()

	for _, k := range keys {
		c.notify(k)
	}
}

// Subscribe calls fn with the key of every entry that is stored or
// invalidated. The returned func unsubscribes.
func (c *Cache) Subscribe(fn func(key string)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Cache) notify(key string) {
	c.mu.Lock()
	fns := make([]func(string), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}
