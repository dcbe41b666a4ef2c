// Package resourceclient is a request cache for a REST admin API.
//
// Reads are keyed by (tag, path, params) and served from a cache.Store while
// fresh. Writes declare the tags they invalidate; on success every entry
// carrying one of those tags is marked stale, and entries that still have
// subscribers are refetched straight away. Concurrent reads of the same key
// share a single request, and a fetch that started before an invalidation
// never overwrites the result of one that started after it.
//
//	client, _ := resourceclient.New(tr, store, nil, logger)
//	blogs := resourceclient.Query{Tag: "blog", Path: "/blogs"}
//	sub := client.Subscribe(blogs)
//	defer sub.Close()
//
//	res, err := client.Read(ctx, blogs)
//	_, err = client.Write(ctx, resourceclient.Mutation{
//		Method:      http.MethodDelete,
//		Path:        "/blogs/42",
//		Invalidates: []resourceclient.Tag{"blog"},
//	})
package resourceclient
