// Package groups holds the finite-field Diffie-Hellman groups used by the
// SSH key exchange and selects one for a group-exchange request.
//
// # Groups
//
// A Group is an immutable (generator, modulus) pair over a safe prime p. The
// built-in table carries the Oakley group 2 prime from RFC 2409 and the MODP
// groups 14, 16 and 18 from RFC 3526. Additional groups can be loaded from an
// OpenSSH moduli(5) file with ParseModuli.
//
// # Selection
//
// Store.Select implements the server side of RFC 4419: it returns the
// smallest group at least as large as the preferred size, falling back to the
// largest group inside [min, max]. ErrNoSuitableGroup is returned when no
// group fits.
//
// A Store is never mutated after NewStore returns, so one instance can be
// shared between concurrent sessions without locking.
package groups
