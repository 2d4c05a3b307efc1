// Package client talks to the taskboard HTTP API.
//
// # Overview
//
// Client is the transport-agnostic contract used by the client services;
// HTTPClient implements it over net/http and JSON. HTTPClient injects the
// bearer token, refreshes an expired access token once with the stored
// refresh token, and retries idempotent requests (GET, PATCH, DELETE) on
// transient failures with exponential backoff.
//
// # Error Handling
//
// Responses are mapped to sentinel errors that callers can match with
// errors.Is: ErrUnauthorized, ErrNotFound, ErrValidation, ErrConflict and
// ErrUnavailable.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation.
package client
