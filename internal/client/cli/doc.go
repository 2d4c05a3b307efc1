// Package cli provides the interactive taskboard terminal client.
//
// It wires configuration, the local session store, the HTTP API client and
// the board services behind a small REPL. Typical flow: restore the stored
// session (or log in), load the board, then run commands until exit.
//
// Key features:
//   - Signup / Login / Logout
//   - Board listing in three columns with search and sort
//   - Add, edit, view and delete tasks
//   - Move a task onto another one (optimistic, rolled back on failure)
//   - Export the board to object storage
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
