// Package handshake runs SSH key exchanges over TCP.
//
// It dials as the initiator, checking host keys against the known-hosts
// store, and serves as the responder with the local host key.
package handshake
