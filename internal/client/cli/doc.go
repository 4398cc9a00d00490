// Package cli provides the interactive fmdata command-line client.
//
// It wires configuration, the session store, the Data API client and the
// services into a REPL. Given positional arguments it runs that single
// command and exits instead.
//
// Commands:
//   - login, status, logout
//   - list <layout> [limit]
//   - find <layout> [json]
//   - get <layout> <id>
//   - edit <layout> <id> [mod=<n>] [json]
//   - delete <layout> <id>
//   - help, exit
//
// find and edit prompt for the JSON body when it is not given inline.
package cli
