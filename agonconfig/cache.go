package agonconfig

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kestrelfmt/agon/tokencount"
)

// Counter builds a tokencount.Counter from Config, using the Redis
// fragment cache backend when Cache.Redis is set and the default
// in-process LRU otherwise.
func (c *Config) Counter() (*tokencount.Counter, error) {
	if c.Cache == nil || c.Cache.Redis == nil {
		return tokencount.NewCounter(), nil
	}
	rc := c.Cache.Redis
	if rc.Addr == "" {
		return nil, fmt.Errorf("agonconfig: cache.redis.addr is required")
	}
	client := redis.NewClient(&redis.Options{Addr: rc.Addr})
	return tokencount.NewCounter(tokencount.WithRedisCache(client, rc.KeyPrefix)), nil
}

// Apply builds this Config's Counter and installs it as tokencount's
// package-level default, so every unqualified tokencount.Count call
// (agon.Encode's candidate costing, trained.EncodeTrained's coverage
// comparison) shares the configured cache backend.
func (c *Config) Apply() error {
	counter, err := c.Counter()
	if err != nil {
		return err
	}
	tokencount.SetDefaultCounter(counter)
	return nil
}
