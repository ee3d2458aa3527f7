package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-ini/ini"

	"sshkex/internal/protocol/groups"
	"sshkex/internal/protocol/kex"
	"sshkex/internal/services/handshake"
)

// INI section names.
const (
	secKex    = "kex"
	secGroups = "groups"
	secServer = "server"
	secClient = "client"
)

// ConfigFile is the config file name inside the home directory.
const ConfigFile = "sshkex.ini"

// KexConfig is the [kex] section.
type KexConfig struct {
	Methods       []string      `ini:"methods" delim:","`
	MinBits       uint32        `ini:"min_bits"`
	PreferredBits uint32        `ini:"preferred_bits"`
	MaxBits       uint32        `ini:"max_bits"`
	LegacyRequest bool          `ini:"legacy_request"`
	Timeout       time.Duration `ini:"timeout"`
}

// GroupsConfig is the [groups] section.
type GroupsConfig struct {
	// ModuliFile adds groups from an OpenSSH moduli file.
	ModuliFile string `ini:"moduli_file"`
	// NoBuiltin drops the RFC groups from the GEX store.
	NoBuiltin bool `ini:"no_builtin"`
}

// ServerConfig is the [server] section.
type ServerConfig struct {
	Listen  string `ini:"listen"`
	HostKey string `ini:"host_key"`
	Version string `ini:"version"`
}

// ClientConfig is the [client] section.
type ClientConfig struct {
	KnownHosts     string `ini:"known_hosts"`
	Version        string `ini:"version"`
	StrictHostKeys bool   `ini:"strict_host_keys"`
}

// Config holds runtime wiring options for building the app.
type Config struct {
	Home string `ini:"-"` // config directory, e.g. $HOME/.sshkex

	Kex    KexConfig
	Groups GroupsConfig
	Server ServerConfig
	Client ClientConfig
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig(home string) Config {
	p := groups.DefaultPolicy()
	return Config{
		Home: home,
		Kex: KexConfig{
			Methods:       kex.SupportedMethods(),
			MinBits:       p.MinBits,
			PreferredBits: p.PreferredBits,
			MaxBits:       p.MaxBits,
			Timeout:       30 * time.Second,
		},
		Server: ServerConfig{
			Listen:  "127.0.0.1:2222",
			HostKey: "host_ed25519.enc",
			Version: handshake.DefaultVersion,
		},
		Client: ClientConfig{
			KnownHosts: "known_hosts.json",
			Version:    handshake.DefaultVersion,
		},
	}
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults.
func LoadConfig(path, home string) (Config, error) {
	cfg := DefaultConfig(home)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return cfg, fmt.Errorf("app: load %s: %w", path, err)
	}
	sections := []struct {
		name string
		v    any
	}{
		{secKex, &cfg.Kex},
		{secGroups, &cfg.Groups},
		{secServer, &cfg.Server},
		{secClient, &cfg.Client},
	}
	for _, s := range sections {
		sec, err := f.GetSection(s.name)
		if err != nil {
			continue // section absent
		}
		if err := sec.StrictMapTo(s.v); err != nil {
			return cfg, fmt.Errorf("app: %s: [%s]: %w", path, s.name, err)
		}
	}
	for i, m := range cfg.Kex.Methods {
		cfg.Kex.Methods[i] = strings.TrimSpace(m)
	}
	return cfg, cfg.Validate()
}

// Validate checks method names and the group size policy.
func (c Config) Validate() error {
	if len(c.Kex.Methods) == 0 {
		return errors.New("app: [kex] methods is empty")
	}
	for _, m := range c.Kex.Methods {
		if _, err := kex.LookupMethod(m); err != nil {
			return fmt.Errorf("app: [kex] methods: %w", err)
		}
	}
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("app: [kex]: %w", err)
	}
	return nil
}

// Policy returns the GEX size policy.
func (c Config) Policy() groups.Policy {
	return groups.Policy{
		MinBits:       c.Kex.MinBits,
		PreferredBits: c.Kex.PreferredBits,
		MaxBits:       c.Kex.MaxBits,
	}
}

// Path resolves p against Home unless it is absolute or empty.
func (c Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Home, p)
}

// WriteConfig writes c as an INI file.
func WriteConfig(w io.Writer, c Config) error {
	f := ini.Empty()
	sections := []struct {
		name, comment string
		v             any
	}{
		{secKex, "Key exchange methods by preference and group exchange sizes in bits.", &c.Kex},
		{secGroups, "Extra groups for group exchange, in OpenSSH moduli format.", &c.Groups},
		{secServer, "Responder side.", &c.Server},
		{secClient, "Initiator side.", &c.Client},
	}
	for _, s := range sections {
		sec, err := f.NewSection(s.name)
		if err != nil {
			return err
		}
		sec.Comment = s.comment
		if err := sec.ReflectFrom(s.v); err != nil {
			return fmt.Errorf("app: [%s]: %w", s.name, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}
