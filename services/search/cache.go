package search

import (
	"encoding/json"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/meghashyamc/awquery/db/kvdb"
	"github.com/meghashyamc/awquery/logger"
)

// ResultCache maps composite ids to the events search has seen. It is bounded by an LRU
// and, when a store is given, backed by it so that ids stay resolvable across restarts.
type ResultCache struct {
	entries *lru.Cache[string, Entry]
	store   kvdb.DB
	logger  logger.Logger
}

// NewResultCache creates a cache holding at most capacity entries in memory. store may be nil.
func NewResultCache(logger logger.Logger, capacity int, store kvdb.DB) (*ResultCache, error) {
	entries, err := lru.New[string, Entry](capacity)
	if err != nil {
		logger.Error("could not create result cache", "capacity", capacity, "err", err.Error())
		return nil, fmt.Errorf("could not create result cache: %w", err)
	}

	return &ResultCache{
		entries: entries,
		store:   store,
		logger:  logger,
	}, nil
}

// Put inserts entries, overwriting any previous entry with the same id. Upstream events are
// immutable, so an overwrite always carries identical data.
func (c *ResultCache) Put(entries ...Entry) {
	toPersist := map[string]string{}
	for _, entry := range entries {
		if c.store != nil && !c.entries.Contains(entry.ID) {
			encoded, err := json.Marshal(entry)
			if err != nil {
				c.logger.Warn("could not encode cache entry", "id", entry.ID, "err", err.Error())
			} else {
				toPersist[entry.ID] = string(encoded)
			}
		}
		c.entries.Add(entry.ID, entry)
	}

	if len(toPersist) == 0 {
		return
	}
	if err := c.store.SetMany(toPersist); err != nil {
		// the in-memory tier still has the entries
		c.logger.Warn("could not persist cache entries", "count", len(toPersist), "err", err.Error())
	}
}

func (c *ResultCache) Get(id string) (Entry, bool) {
	if entry, ok := c.entries.Get(id); ok {
		return entry, true
	}
	if c.store == nil || len(id) == 0 {
		return Entry{}, false
	}

	encoded, err := c.store.Get(id)
	if err != nil {
		if !errors.Is(err, kvdb.ErrNotFound) {
			c.logger.Warn("could not read cache entry", "id", id, "err", err.Error())
		}
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(encoded), &entry); err != nil {
		c.logger.Warn("could not decode cache entry", "id", id, "err", err.Error())
		return Entry{}, false
	}
	c.entries.Add(id, entry)

	return entry, true
}

// Len is the number of entries held in memory.
func (c *ResultCache) Len() int {
	return c.entries.Len()
}
