// Package services defines the [MetadataService] interface for music providers and implements it for YouTube and Spotify.
//
// # Metadata Lookups
//
// Every provider resolves a source URL (a watch page, a share link, a track page) into [models.TrackMetadata]:
// title, artist, artwork and duration. A [Registry] picks the provider for a URL with [DetectService].
//
// Providers that also implement [RelatedService] suggest tracks related to a URL; [Registry.Related] dispatches them.
//
// # YouTube Implementation
//
// [YouTubeService] calls the YouTube Data API v3 videos endpoint with an API key.
// The channel title stands in for the artist and the ISO 8601 content duration is parsed with [ParseISODuration].
// Related videos come from a search for the seed video's channel and title.
//
// # Spotify Implementation
//
// [SpotifyService] authenticates with the OAuth2 client-credentials flow.
// The [clientcredentials.Config] token source caches and refreshes the app token.
// Related tracks are the top tracks of the seed track's first artist.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : API key or client credentials not configured
//   - [shared.ErrInvalidInput] : URL does not identify a track on the service
//   - [shared.ErrTrackNotFound] : the service has no such track
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
package services
