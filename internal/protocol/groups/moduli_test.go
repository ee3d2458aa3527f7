package groups_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sshkex/internal/protocol/groups"
)

func moduliLine(typ, tests, size int, g string, p string) string {
	return fmt.Sprintf("20240101000000 %d %d 100 %d %s %s", typ, tests, size, g, p)
}

func TestParseModuli(t *testing.T) {
	p1024 := fmt.Sprintf("%X", groups.Oakley2.P)
	p2048 := fmt.Sprintf("%X", groups.Group14.P)

	input := strings.Join([]string{
		"# Time Type Tests Tries Size Generator Modulus",
		"",
		moduliLine(2, 6, 1023, "2", p1024),
		moduliLine(0, 6, 1023, "2", p1024), // not a safe prime
		moduliLine(2, 2, 2047, "2", p2048), // Miller-Rabin not run
		moduliLine(2, 6, 2047, "5", p2048),
	}, "\n")

	gs, err := groups.ParseModuli(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseModuli: %v", err)
	}
	if len(gs) != 2 {
		t.Fatalf("want 2 groups, got %d", len(gs))
	}
	if !gs[0].Equal(groups.Oakley2) {
		t.Fatalf("first group mismatch: %s", gs[0])
	}
	if gs[1].Bits() != 2048 || gs[1].G.Int64() != 5 {
		t.Fatalf("second group mismatch: %s", gs[1])
	}
	if gs[1].Name != "moduli:2047" {
		t.Fatalf("unexpected name %q", gs[1].Name)
	}
}

func TestParseModuli_Malformed(t *testing.T) {
	p1024 := fmt.Sprintf("%X", groups.Oakley2.P)
	for name, input := range map[string]string{
		"short line":    "20240101000000 2 6 100 1023 2",
		"bad type":      moduliLine(2, 6, 1023, "2", p1024)[:15] + "x 6 100 1023 2 " + p1024,
		"size mismatch": moduliLine(2, 6, 2047, "2", p1024),
		"bad modulus":   moduliLine(2, 6, 1023, "2", "XYZ"),
		"bad generator": moduliLine(2, 6, 1023, "1", p1024),
	} {
		if _, err := groups.ParseModuli(strings.NewReader(input)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadModuliFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moduli")
	content := moduliLine(2, 6, 2047, "2", fmt.Sprintf("%X", groups.Group14.P)) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	gs, err := groups.LoadModuliFile(path)
	if err != nil {
		t.Fatalf("LoadModuliFile: %v", err)
	}
	store := groups.NewStore(gs...)
	g, err := store.Select(1024, 2048, 8192)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !g.Equal(groups.Group14) {
		t.Fatalf("want group 14 from file, got %s", g)
	}

	if _, err := groups.LoadModuliFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
