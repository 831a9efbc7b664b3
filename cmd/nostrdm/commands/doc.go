// Package commands defines the nostrdm CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - key generate / key convert       Keypair generation and re-encoding
//   - event send                       Publish a signed event to relays
//   - metadata event / fetch           Kind-0 profile events
//   - relay-list event / fetch         Kind-10002/10050 relay lists
//   - dm send / fetch / save / history Private direct messages
//
// # Conventions
//
// Key material arrives on a stdin pipe, never on argv; relay sets and
// batches are JSON arguments; results go to stdout so commands compose with
// pipes, and diagnostics go to stderr. Exit codes distinguish bad input (1)
// from partial delivery (2) from total delivery failure (3).
package commands
