// Package session provides server-side sessions and their storage.
//
// A Session carries an opaque Token (the cookie value) and a map of values.
// Store implementations persist sessions by token: MemoryStore for a single
// process, RedisStore for shared deployments.
//
//	store := session.NewMemoryStore()
//	sess := session.New(uuid.NewString(), token, time.Now().Add(24*time.Hour))
//	err := store.Create(ctx, sess)
//
// Typed access goes through Value and ValueOr:
//
//	csrf := session.ValueOr(sess, "csrf_token", "")
package session
