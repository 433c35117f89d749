// Package redis connects transductions to Redis lists.
//
// ListSource drains a list as an async source and Pushing appends every
// item reaching it to a list, so a plan can move work between queues:
//
//	src := redis.ListSource(client, "jobs:in")
//	n, err := async.Transduce(ctx, xf, src, redis.Pushing[string](client, "jobs:out"))
//
// Store keeps JSON values under prefixed keys; the HTTP server uses it to
// retain run results.
package redis
