// Package cli provides the interactive EvoRun command-line client.
//
// It wires configuration, the local mirror, the application services and an
// interactive REPL that keeps working while the server is unreachable.
// Typical flow: prompt for credentials, run onboarding when the profile is
// incomplete, start a background connectivity watcher and execute user
// commands.
//
// Key features:
//   - Login / Logout (online with offline fallback), Register
//   - Profile view and onboarding
//   - Add / Edit / Delete / List / Show workouts
//   - Manual sync and sync status
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
