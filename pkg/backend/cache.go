package backend

import (
	"time"

	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// cache holds user profiles by id for display purposes. Entries expire after
// ttl so that changes made by other processes show up eventually; checks that
// gate a write read the store instead.
type cache struct {
	users *expirable.LRU[string, models.User]
}

func newCache(size int, ttl time.Duration) *cache {
	if size <= 0 {
		size = 1
	}
	return &cache{
		users: expirable.NewLRU[string, models.User](size, nil, ttl),
	}
}

func (c *cache) Get(id string) (models.User, bool) {
	return c.users.Get(id)
}

func (c *cache) Set(id string, u models.User) {
	c.users.Add(id, u)
}

func (c *cache) Delete(id string) {
	c.users.Remove(id)
}
