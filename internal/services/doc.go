// Package services wraps the Spotify Web API behind the provider-neutral [Service] interface.
//
// [SpotifyService] is the only implementation. It delegates token acquisition to an
// [Authorizer] (the auth flow coordinator): every outbound request carries the current
// bearer token, a 401 triggers exactly one refresh and one retry, and any other non-2xx
// response surfaces as a [shared.APIError] carrying the status code and body.
//
// Endpoint methods map one-to-one onto API operations and deserialize into the typed
// Spotify* wire structs; the Service interface methods translate those into the
// provider-neutral domain types consumed by the CLI and task engine.
package services
