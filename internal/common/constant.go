// Package common contains shared constants and sentinel errors used across
// EvoRun components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token
// on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token inside the Authorization header.
const BearerPrefix = "Bearer "

// IdempotencyKeyHeaderName lets a client retry a workout creation without
// producing a second remote resource.
const IdempotencyKeyHeaderName = "Idempotency-Key"

// TokenTypeBearer is reported in login responses.
const TokenTypeBearer = "bearer"
