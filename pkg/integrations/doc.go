// Package integrations provides HTTP clients for the photo services a tree
// is grown from.
//
// # Client Pattern
//
// Each service lives in its own subpackage and embeds [Client]:
//
//	client := flickr.NewClient(apiKey, cache.NewNullCache(), cache.TTLSearch)
//	photos, err := client.Search(ctx, "ocean", false)  // false = use cache
//
// [Client] handles:
//   - default headers and JSON decoding
//   - status classification ([ErrNotFound], [ErrUnauthorized], retryable 5xx and 429)
//   - response caching through [cache.Cache]
//   - retries with exponential backoff via [httputil.Retry]
//
// # Subpackages
//
//   - [flickr]: flickr.photos.search
//
// [flickr]: github.com/matzehuels/tagtree/pkg/integrations/flickr
// [cache.Cache]: github.com/matzehuels/tagtree/pkg/cache.Cache
// [httputil.Retry]: github.com/matzehuels/tagtree/pkg/httputil.Retry
package integrations
