// Package cache holds rendered fragments that are expensive to rebuild,
// such as converted markdown documents.
//
// Memory is an LRU cache for a single process; Redis shares entries between
// instances. Group puts either behind a loader and collapses concurrent
// misses of the same key:
//
//	g := cache.NewGroup[string](cache.NewMemory[string](256), time.Hour)
//	html, err := g.Get(ctx, key, func(ctx context.Context) (string, error) {
//		return render(ctx)
//	})
package cache
