// Package redis opens the Redis client backing the shared session store.
//
//	client, err := redis.Open(ctx, redis.Config{URL: "redis://localhost:6379/0"})
//	store := session.NewRedisStore(client)
//
// Zero Config fields fall back to DefaultConfig.
package redis
