// Package spotify provides a client for the Spotify Web API endpoints used
// to build a museum: the current user's profile and their top artists and
// tracks.
//
// Responses decode into the wire types of github.com/zmb3/spotify/v2, while
// transport, retries, caching and status mapping come from the shared
// [integrations.Client]. Every non-2xx response surfaces as an
// [errors.FetchFailedError] naming the endpoint and status.
//
// # Usage
//
//	client, err := spotify.NewClient(token, c)
//	artists, err := client.TopArtists(ctx, 30, spotify.MediumTerm, false)
//
// The [Authenticator] runs the authorization-code flow with PKCE so the CLI
// can log in without a client secret.
//
// [integrations.Client]: github.com/matzehuels/museum/pkg/integrations.Client
// [errors.FetchFailedError]: github.com/matzehuels/museum/pkg/errors.FetchFailedError
package spotify
