// Package reconcile brings the local mirror and the server into agreement.
//
// A run has four ordered phases:
//
//  1. profile push: a dirty profile is sent and replaced by the server copy
//  2. workout push: dirty rows are created or updated remotely, one by one
//  3. deletion push: rows flagged for deletion are removed remotely and then
//     locally; rows the server never saw are removed locally right away
//  4. pull: the server's workout list and profile overwrite clean local rows
//
// An unreachable server ends the run early and marks the report Deferred;
// everything still dirty is retried by the next run. A rejected token aborts
// the run with client.ErrUnauthorized. Unexpected server answers are counted
// as failures and the run continues. Local store failures abort the run.
//
// Only one run may be in flight per Engine.
package reconcile
