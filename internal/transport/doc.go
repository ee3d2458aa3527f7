// Package transport carries key exchange packets between two peers.
//
// It frames payloads with the unencrypted RFC 4253 binary packet format,
// swaps version banners, negotiates the method with KEXINIT and then drives
// a kex session to NEWKEYS. An in-memory Pipe serves tests and the local
// handshake command. Nothing here interprets DH values; that is the job of
// package kex.
package transport
