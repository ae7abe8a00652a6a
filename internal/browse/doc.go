// Package browse implements the paginated, recursive traversal of a
// camera's content tree.
//
// # Walker
//
// Walker performs a lazy depth-first walk over a Service, yielding one
// downloadable image item at a time:
//
//	w := browse.NewWalker(service)
//	err := w.Walk(ctx, model.RootObjectID, func(item model.MediaItem) error {
//	    return downloader.Process(ctx, item)
//	})
//
// # Pagination
//
// Each container is listed page by page: the request offset is the
// number of children fetched so far, the requested count is 0 ("all
// remaining"), and the first response's TotalMatches decides when the
// container is exhausted. Devices that report a changing total are
// tolerated up to a bounded number of pages, after which the traversal
// fails rather than loop forever.
//
// # Failure model
//
// Listing failures are fatal to the whole traversal and surface as
// errors wrapping ErrBrowseFailed. Per-item download problems are the
// caller's concern and do not belong here.
package browse
