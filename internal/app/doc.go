// Package app wires application dependencies for the CLI.
//
// It loads Config from <home>/config.yaml, builds the concrete stores,
// signing agent, node and blob clients and the high-level services, and
// exposes them via the Wire struct for commands to use.
package app
