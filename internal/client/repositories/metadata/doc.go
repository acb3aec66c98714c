// Package metadata keeps the client's settings table: the remembered login
// pair and the time of the last completed reconciliation.
//
// Multi-key reads and writes are single statements, so the remembered pair
// is always stored or removed as a whole.
package metadata
