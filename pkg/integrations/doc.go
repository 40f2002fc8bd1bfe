// Package integrations provides the shared HTTP client used to talk to the
// music API and to download artwork.
//
// # Overview
//
// Upstream-specific clients live in subpackages:
//
//   - [spotify]: listener profile and top items, plus the PKCE login flow
//
// # Client Pattern
//
// Subpackage clients embed [Client] and build typed calls on top of it:
//
//	client := spotify.NewClient(token, c)
//	page, err := client.TopArtists(ctx, 20, spotify.MediumTerm, false)  // false = use cache
//
// [Client] handles:
//   - Default headers (bearer credentials)
//   - Response caching through [cache.Cache] with a 10 minute default TTL
//   - Retries for rate limits (honouring Retry-After) and 5xx responses
//   - Mapping of non-2xx statuses and transport failures to
//     [errors.FetchFailedError], which wraps one of [ErrUnauthorized],
//     [ErrNotFound], [ErrRateLimited] or [ErrNetwork]
//
// [spotify]: github.com/matzehuels/museum/pkg/integrations/spotify
// [cache.Cache]: github.com/matzehuels/museum/pkg/cache.Cache
// [errors.FetchFailedError]: github.com/matzehuels/museum/pkg/errors.FetchFailedError
package integrations
