package groups

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// ErrInvalidGroup is returned for parameters that cannot form a usable group.
var ErrInvalidGroup = errors.New("groups: invalid group parameters")

// Group is a multiplicative group modulo a safe prime.
type Group struct {
	// Group generator.
	G *big.Int

	// Safe prime modulus.
	P *big.Int

	// Name is informational, e.g. "rfc3526-14" or "moduli:3071".
	Name string
}

// New validates g and p and returns a Group. The primality of p is not
// checked here; see IsSafePrime.
func New(name string, g, p *big.Int) (*Group, error) {
	if g == nil || p == nil {
		return nil, fmt.Errorf("%w: nil parameter", ErrInvalidGroup)
	}
	if p.Sign() <= 0 || p.Bit(0) == 0 || p.Cmp(big.NewInt(5)) < 0 {
		return nil, fmt.Errorf("%w: modulus must be an odd prime >= 5", ErrInvalidGroup)
	}
	pMinus1 := new(big.Int).Sub(p, bigOne)
	if g.Cmp(bigOne) <= 0 || g.Cmp(pMinus1) >= 0 {
		return nil, fmt.Errorf("%w: generator out of range", ErrInvalidGroup)
	}
	return &Group{
		G:    new(big.Int).Set(g),
		P:    new(big.Int).Set(p),
		Name: name,
	}, nil
}

func mustHex(name string, g int64, hexP string) *Group {
	p, ok := new(big.Int).SetString(hexP, 16)
	if !ok {
		panic("big.Int SetString failed for " + name)
	}
	grp, err := New(name, big.NewInt(g), p)
	if err != nil {
		panic(err)
	}
	return grp
}

// Bits returns the bit length of the modulus.
func (g *Group) Bits() int {
	return g.P.BitLen()
}

// Order returns (p-1)/2, the order of the prime-order subgroup.
func (g *Group) Order() *big.Int {
	q := new(big.Int).Sub(g.P, bigOne)
	return q.Rsh(q, 1)
}

// PMinus1 returns p-1.
func (g *Group) PMinus1() *big.Int {
	return new(big.Int).Sub(g.P, bigOne)
}

// Equal reports whether both groups have the same parameters.
func (g *Group) Equal(o *Group) bool {
	if g == nil || o == nil {
		return g == o
	}
	return g.G.Cmp(o.G) == 0 && g.P.Cmp(o.P) == 0
}

func (g *Group) String() string {
	if g.Name != "" {
		return fmt.Sprintf("%s (%d bits, g=%s)", g.Name, g.Bits(), g.G)
	}
	return fmt.Sprintf("%d bits, g=%s", g.Bits(), g.G)
}

// IsSafePrime returns true if p is probably a safe prime (i.e., p is prime and
// (p-1)/2 is prime.).
func IsSafePrime(p *big.Int, rounds int) bool {
	if !p.ProbablyPrime(rounds) {
		return false
	}
	q := new(big.Int).Sub(p, bigOne)
	q.Div(q, bigTwo)
	return q.ProbablyPrime(rounds)
}
