// Package cli provides the interactive ZooTrail command-line client.
//
// It wires configuration, the local sqlite store, the HTTP API client, the
// session manager, and an interactive REPL. Typical flow: hydrate the
// persisted session, show any pending startup notice, and execute user
// commands until exit.
//
// Key features:
//   - Login / Logout / Register with classified, user-facing outcomes
//   - Password reset and throttled email resends
//   - Dashboard, visit log, zoo search with local history
//   - Achievements (behind a configuration flag)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
