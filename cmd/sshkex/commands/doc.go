// Package commands defines the sshkex CLI and wires dependencies for subcommands.
//
// Commands
//
//   - config init          Write a default sshkex.ini
//   - groups               List the group exchange groups
//   - select               Show which group a size request gets
//   - hostkey init         Create the sealed server host key
//   - hostkey fingerprint  Print the host key fingerprint
//   - handshake            Run both sides in process over a pipe
//   - serve                Answer key exchanges on a TCP address
//   - connect              Run a key exchange against a server
//
// # Implementation
//
// The root command loads the config and builds the dependency graph (stores,
// group store, handshake service) before any subcommand runs. glog flags such
// as -v and -logtostderr are exposed as persistent flags.
package commands
