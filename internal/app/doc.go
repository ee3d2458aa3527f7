// Package app wires application dependencies for the CLI.
//
// It loads the INI configuration, builds the host key and known-hosts
// stores and the group store from Config, and exposes them via the Wire
// struct for commands to use.
package app
