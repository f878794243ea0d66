package cache

import (
	"context"
	"sync"
	"time"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/giulianni/lawfirm-ai-back/internal/repository"
)

type entry struct {
	template  domain.DocumentTemplate
	expiresAt time.Time
}

type Config struct {
	TTL        time.Duration
	MaxEntries int
}

// TemplateCache is a TTL cache in front of the template store so repeated
// drafts of the same template skip the database. It implements
// repository.TemplatesRepository and is safe for concurrent use.
type TemplateCache struct {
	inner      repository.TemplatesRepository
	mu         sync.RWMutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
}

func NewTemplateCache(inner repository.TemplatesRepository, config Config) *TemplateCache {
	if config.TTL <= 0 {
		config.TTL = 10 * time.Minute
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = 200
	}
	return &TemplateCache{
		inner:      inner,
		entries:    make(map[string]entry),
		ttl:        config.TTL,
		maxEntries: config.MaxEntries,
	}
}

func (c *TemplateCache) GetTemplate(ctx context.Context, templateID string) (*domain.DocumentTemplate, error) {
	c.mu.RLock()
	cached, exists := c.entries[templateID]
	c.mu.RUnlock()

	if exists {
		if time.Now().UTC().Before(cached.expiresAt) {
			clone := cached.template
			return &clone, nil
		}
		c.mu.Lock()
		delete(c.entries, templateID)
		c.mu.Unlock()
	}

	template, err := c.inner.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[templateID] = entry{
		template:  *template,
		expiresAt: time.Now().UTC().Add(c.ttl),
	}
	c.mu.Unlock()

	return template, nil
}

func (c *TemplateCache) evictOldestLocked() {
	var oldestKey string
	var oldestExpiry time.Time
	for key, item := range c.entries {
		if oldestKey == "" || item.expiresAt.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = item.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
