// Package commands defines the cryptocomm CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init            Create the local signing key
//   - connect         Authorize this client to use the key
//   - disconnect      Revoke the authorization
//   - whoami          Show the connected address
//   - switch-network  Point the agent at another network
//   - deploy          Publish the registry and ledger contracts
//   - register        Claim a username
//   - profile         Show username, address and friend count
//   - add-friend      Add a registered user as a friend
//   - friends         List (and filter) your friends
//   - search          Find a user by exact address or username
//   - send            Send a text message
//   - send-file       Upload a file and send its link
//   - chat            Print a conversation, optionally replying first
//   - verify          Check the ledger's hash chain
//
// # Implementation
//
// The root command loads <home>/config.yaml, applies flag overrides and
// builds the dependency graph (stores, signing agent, node client, services)
// before any subcommand runs, so handlers share one app context.
package commands
