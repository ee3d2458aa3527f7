package groups

import (
	"errors"
	"fmt"
	"sort"

	"github.com/golang/glog"

	"sshkex/internal/util/loglevel"
)

// ErrNoSuitableGroup is returned when no stored group satisfies a request.
var ErrNoSuitableGroup = errors.New("groups: no suitable group")

// Group size limits from RFC 8270 and OpenSSH.
const (
	DefaultMinBits       uint32 = 2048
	DefaultPreferredBits uint32 = 2048
	DefaultMaxBits       uint32 = 8192
)

// Policy is the (min, preferred, max) size request of a group exchange.
type Policy struct {
	MinBits       uint32
	PreferredBits uint32
	MaxBits       uint32
}

// DefaultPolicy returns the default request sent by initiators.
func DefaultPolicy() Policy {
	return Policy{
		MinBits:       DefaultMinBits,
		PreferredBits: DefaultPreferredBits,
		MaxBits:       DefaultMaxBits,
	}
}

// Validate checks min <= preferred <= max and that min is non-zero.
func (p Policy) Validate() error {
	if p.MinBits == 0 || p.MinBits > p.PreferredBits || p.PreferredBits > p.MaxBits {
		return fmt.Errorf("groups: invalid policy min=%d preferred=%d max=%d",
			p.MinBits, p.PreferredBits, p.MaxBits)
	}
	return nil
}

// Legacy maps a single-size KEX_DH_GEX_REQUEST_OLD onto a full request:
// the policy's own bounds with n raised to at least the policy minimum.
func (p Policy) Legacy(n uint32) Policy {
	if n < p.MinBits {
		n = p.MinBits
	}
	if n > p.MaxBits {
		n = p.MaxBits
	}
	return Policy{MinBits: p.MinBits, PreferredBits: n, MaxBits: p.MaxBits}
}

// Store is an immutable, size-ordered set of groups.
type Store struct {
	groups []*Group
}

// NewStore returns a store holding gs sorted by modulus size. Duplicate
// moduli are kept once.
func NewStore(gs ...*Group) *Store {
	sorted := make([]*Group, 0, len(gs))
	for _, g := range gs {
		if g != nil {
			sorted = append(sorted, g)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Bits() < sorted[j].Bits()
	})
	out := sorted[:0]
	for _, g := range sorted {
		dup := false
		for _, seen := range out {
			if seen.P.Cmp(g.P) == 0 {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, g)
		}
	}
	return &Store{groups: out}
}

// DefaultStore holds the built-in RFC groups.
func DefaultStore() *Store {
	return NewStore(Builtin()...)
}

// Len returns the number of groups.
func (s *Store) Len() int { return len(s.groups) }

// Groups returns a copy of the group list, smallest first.
func (s *Store) Groups() []*Group {
	out := make([]*Group, len(s.groups))
	copy(out, s.groups)
	return out
}

// Select chooses the group answering a (min, preferred, max) request.
//
// The preferred size is clamped into [min, max]. The smallest group whose
// size is at least the preferred size and at most max wins; otherwise the
// largest group inside [min, max] is returned.
func (s *Store) Select(min, preferred, max uint32) (*Group, error) {
	if min > max {
		return nil, fmt.Errorf("%w: min %d > max %d", ErrNoSuitableGroup, min, max)
	}
	if preferred < min {
		preferred = min
	}
	if preferred > max {
		preferred = max
	}

	var fallback *Group
	for _, g := range s.groups {
		bits := uint32(g.Bits())
		if bits > max {
			break
		}
		if bits >= preferred {
			if glog.V(loglevel.LvGroups) {
				glog.Infof("groups: request (%d,%d,%d) -> %s", min, preferred, max, g)
			}
			return g, nil
		}
		if bits >= min {
			fallback = g
		}
	}
	if fallback != nil {
		if glog.V(loglevel.LvGroups) {
			glog.Infof("groups: request (%d,%d,%d) -> fallback %s", min, preferred, max, fallback)
		}
		return fallback, nil
	}
	return nil, fmt.Errorf("%w: request (%d,%d,%d)", ErrNoSuitableGroup, min, preferred, max)
}

// SelectPolicy is Select with the fields of p.
func (s *Store) SelectPolicy(p Policy) (*Group, error) {
	return s.Select(p.MinBits, p.PreferredBits, p.MaxBits)
}
