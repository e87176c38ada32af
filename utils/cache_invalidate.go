package utils

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Key prefixes shared with middlewares.ResponseCache.
const (
	EventsListPrefix = "cache:events:list:"
	EventsItemPrefix = "cache:events:item:"
)

type CacheInvalidator struct{ rdb *redis.Client }

func NewCacheInvalidator(rdb *redis.Client) *CacheInvalidator { return &CacheInvalidator{rdb} }

// PurgeEventsList drops every cached event listing. Membership changes move
// events in and out of several users' lists, so all of them go.
func (ci *CacheInvalidator) PurgeEventsList(ctx context.Context) {
	ci.purge(ctx, EventsListPrefix+"*")
}

// PurgeEventItem drops cached reads under /events/:id for one event.
func (ci *CacheInvalidator) PurgeEventItem(ctx context.Context, eventID int64) {
	ci.purge(ctx, EventsItemPrefix+strconv.FormatInt(eventID, 10)+":*")
}

// PurgeAll is used when a write touches an unknown set of events (user deletion).
func (ci *CacheInvalidator) PurgeAll(ctx context.Context) {
	ci.purge(ctx, "cache:events:*")
}

func (ci *CacheInvalidator) purge(ctx context.Context, pattern string) {
	if ci == nil || ci.rdb == nil {
		return
	}
	iter := ci.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		_ = ci.rdb.Del(ctx, iter.Val()).Err()
	}
}
