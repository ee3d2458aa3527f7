package kex

import (
	"crypto"
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"

	"sshkex/internal/protocol/groups"
)

// Method names, RFC 4253, RFC 4419 and RFC 8268.
const (
	MethodDH1SHA1     = "diffie-hellman-group1-sha1"
	MethodDH14SHA1    = "diffie-hellman-group14-sha1"
	MethodDH14SHA256  = "diffie-hellman-group14-sha256"
	MethodDH16SHA512  = "diffie-hellman-group16-sha512"
	MethodDH18SHA512  = "diffie-hellman-group18-sha512"
	MethodDHGexSHA1   = "diffie-hellman-group-exchange-sha1"
	MethodDHGexSHA256 = "diffie-hellman-group-exchange-sha256"
)

// Method describes one key exchange method.
type Method struct {
	Name string

	// Hash is used for the exchange hash and for key derivation.
	Hash crypto.Hash

	// Group is the fixed group, or nil for group exchange.
	Group *groups.Group
}

// GroupExchange reports whether the group is negotiated.
func (m Method) GroupExchange() bool { return m.Group == nil }

// methods is ordered by preference and never modified.
var methods = []Method{
	{Name: MethodDHGexSHA256, Hash: crypto.SHA256},
	{Name: MethodDH16SHA512, Hash: crypto.SHA512, Group: groups.Group16},
	{Name: MethodDH18SHA512, Hash: crypto.SHA512, Group: groups.Group18},
	{Name: MethodDH14SHA256, Hash: crypto.SHA256, Group: groups.Group14},
	{Name: MethodDH14SHA1, Hash: crypto.SHA1, Group: groups.Group14},
	{Name: MethodDHGexSHA1, Hash: crypto.SHA1},
	{Name: MethodDH1SHA1, Hash: crypto.SHA1, Group: groups.Oakley2},
}

// LookupMethod returns the method called name.
func LookupMethod(name string) (Method, error) {
	for _, m := range methods {
		if m.Name == name {
			return m, nil
		}
	}
	return Method{}, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// SupportedMethods returns all method names, most preferred first.
func SupportedMethods() []string {
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = m.Name
	}
	return out
}
