// Package app wires application dependencies for the CLI.
//
// It builds the relay pool and the message service from Config, exposing
// them via the App struct for commands to use.
package app
