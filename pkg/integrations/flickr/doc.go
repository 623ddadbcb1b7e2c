// Package flickr searches Flickr for photos by tag.
//
// # Search
//
// [Client.Search] calls flickr.photos.search sorted by relevance, asks for
// 20 results with their tags and the square, medium and original size URLs,
// and returns them in response order:
//
//	client := flickr.NewClient(apiKey, c, cache.TTLSearch)
//	photos, err := client.Search(ctx, "ocean", false)
//
// Each [Photo] uses the original size as its full image when the owner
// allows it and falls back to the medium size otherwise. The square 75px
// image is the thumbnail.
//
// # Errors
//
// Flickr reports API failures with HTTP 200 and a "fail" status. An invalid
// key or a rejected request wraps [integrations.ErrUnauthorized] or
// [ErrAPI]; "service unavailable" (code 105) is retryable like a 5xx.
//
// [integrations.ErrUnauthorized]: github.com/matzehuels/tagtree/pkg/integrations.ErrUnauthorized
package flickr
