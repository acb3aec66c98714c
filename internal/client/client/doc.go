// Package client talks to the EvoRun backend over HTTP.
//
// # Overview
//
// Client is the transport-agnostic contract used by the reconciliation
// engine and the services; HTTPClient implements it with net/http and JSON.
// Every authenticated call takes the bearer token explicitly so that no
// session state lives in the client.
//
// # Error Handling
//
// Each call ends in one of five outcomes. Success returns a nil error; the
// others are sentinel errors matched with errors.Is (or *ServerError with
// errors.As):
//
//   - ErrUnavailable  the server could not be reached or did not answer in time
//   - ErrUnauthorized the server rejected the credentials or token
//   - ErrNotFound     the addressed record does not exist remotely
//   - *ServerError    any other unexpected answer
//
// Classify folds an error into an Outcome for logging and metrics.
package client
