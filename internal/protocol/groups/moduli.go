package groups

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"
)

// moduli(5) field values.
const (
	moduliTypeSafe        = 2
	moduliTestMillerRabin = 0x04
)

// ParseModuli reads an OpenSSH moduli(5) file. Each line holds
//
//	time type tests tries size generator modulus
//
// where size is the modulus bit length minus one. Only safe primes that
// passed Miller-Rabin are returned. Comment and blank lines are ignored;
// malformed lines are an error.
func ParseModuli(r io.Reader) ([]*Group, error) {
	var out []*Group
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 7 {
			return nil, fmt.Errorf("groups: moduli line %d: want 7 fields, got %d", line, len(fields))
		}
		typ, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("groups: moduli line %d: type: %w", line, err)
		}
		tests, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("groups: moduli line %d: tests: %w", line, err)
		}
		size, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("groups: moduli line %d: size: %w", line, err)
		}
		g, ok := new(big.Int).SetString(fields[5], 16)
		if !ok {
			return nil, fmt.Errorf("groups: moduli line %d: bad generator", line)
		}
		p, ok := new(big.Int).SetString(fields[6], 16)
		if !ok {
			return nil, fmt.Errorf("groups: moduli line %d: bad modulus", line)
		}
		if typ != moduliTypeSafe || tests&moduliTestMillerRabin == 0 {
			continue
		}
		if p.BitLen() != size+1 {
			return nil, fmt.Errorf("groups: moduli line %d: size %d does not match modulus (%d bits)",
				line, size, p.BitLen())
		}
		grp, err := New(fmt.Sprintf("moduli:%d", size), g, p)
		if err != nil {
			return nil, fmt.Errorf("groups: moduli line %d: %w", line, err)
		}
		out = append(out, grp)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadModuliFile parses the moduli file at path.
func LoadModuliFile(path string) ([]*Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseModuli(f)
}
