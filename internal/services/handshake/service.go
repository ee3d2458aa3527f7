package handshake

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"sshkex/internal/crypto"
	"sshkex/internal/domain"
	"sshkex/internal/protocol/groups"
	"sshkex/internal/protocol/kex"
	"sshkex/internal/transport"
	"sshkex/internal/util/loglevel"
)

var (
	// ErrHostKeyChanged is returned when a host presents a key other than
	// the one recorded for it.
	ErrHostKeyChanged = errors.New("handshake: host key changed")

	// ErrUnknownHost is returned in strict mode for hosts with no record.
	ErrUnknownHost = errors.New("handshake: unknown host")
)

// DefaultVersion is the identification string sent when none is set.
const DefaultVersion = "SSH-2.0-sshkex_1.0"

// Options tunes both sides of the handshake.
type Options struct {
	ClientVersion string
	ServerVersion string

	// Methods by preference; nil means kex.SupportedMethods().
	Methods []string

	Groups        kex.GroupSelector
	Policy        groups.Policy
	LegacyRequest bool

	// StrictHostKeys refuses hosts missing from the known-hosts store
	// instead of remembering them.
	StrictHostKeys bool

	// Timeout bounds one handshake. Zero means no limit.
	Timeout time.Duration
}

// Service dials and serves key exchanges.
//
// A Service holds:
//   - the local host key, used when serving;
//   - the known-hosts store, consulted when dialing;
//   - the kex options shared by both sides.
type Service struct {
	hostKey *crypto.HostKey
	known   domain.KnownHostsStore
	opts    Options
	dialer  net.Dialer
}

// New constructs a Service. hostKey may be nil for a dial-only service and
// known may be nil to accept any host key.
func New(hostKey *crypto.HostKey, known domain.KnownHostsStore, opts Options) *Service {
	if opts.ClientVersion == "" {
		opts.ClientVersion = DefaultVersion
	}
	if opts.ServerVersion == "" {
		opts.ServerVersion = DefaultVersion
	}
	return &Service{hostKey: hostKey, known: known, opts: opts}
}

// TrustOnFirstUse returns a callback that accepts the host key recorded
// for host, records the first key seen unless strict is set, and rejects
// any other key.
func TrustOnFirstUse(known domain.KnownHostsStore, host string, strict bool) domain.HostKeyCallback {
	return func(blob []byte) error {
		fp := crypto.Fingerprint(blob)
		want, ok, err := known.Lookup(host)
		if err != nil {
			return err
		}
		switch {
		case ok && want == fp:
			return known.Remember(host, fp)
		case ok:
			return fmt.Errorf("%w: %s presented %s, recorded %s", ErrHostKeyChanged, host, fp, want)
		case strict:
			return fmt.Errorf("%w: %s (%s)", ErrUnknownHost, host, fp)
		}
		glog.Infof("handshake: permanently added %s (%s) to known hosts", host, fp)
		return known.Remember(host, fp)
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(ctx, s.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

func (s *Service) transportOptions(role domain.Role, id string) transport.Options {
	return transport.Options{
		Role:          role,
		ID:            id,
		Methods:       s.opts.Methods,
		Groups:        s.opts.Groups,
		Policy:        s.opts.Policy,
		LegacyRequest: s.opts.LegacyRequest,
	}
}

// Dial connects to addr and runs the initiator side.
func (s *Service) Dial(ctx context.Context, addr string) (*domain.Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := s.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	id := uuid.NewString()
	if glog.V(loglevel.LvConnect) {
		glog.Infof("conn %s: dialed %s", id, addr)
	}
	conn := transport.NewStreamConn(c)
	remote, err := conn.ExchangeVersions(ctx, s.opts.ClientVersion)
	if err != nil {
		return nil, err
	}

	opts := s.transportOptions(domain.Initiator, id)
	opts.LocalVersion = s.opts.ClientVersion
	opts.RemoteVersion = remote
	if s.known != nil {
		opts.HostKeyCallback = TrustOnFirstUse(s.known, addr, s.opts.StrictHostKeys)
	}
	return transport.Run(ctx, conn, opts)
}

// Handle runs the responder side on an accepted connection and closes it.
func (s *Service) Handle(ctx context.Context, c net.Conn) (*domain.Result, error) {
	defer c.Close()
	if s.hostKey == nil {
		return nil, errors.New("handshake: serving needs a host key")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id := uuid.NewString()
	if glog.V(loglevel.LvConnect) {
		glog.Infof("conn %s: accepted %s", id, c.RemoteAddr())
	}
	conn := transport.NewStreamConn(c)
	remote, err := conn.ExchangeVersions(ctx, s.opts.ServerVersion)
	if err != nil {
		return nil, err
	}
	opts := s.transportOptions(domain.Responder, id)
	opts.LocalVersion = s.opts.ServerVersion
	opts.RemoteVersion = remote
	opts.HostKey = s.hostKey
	return transport.Run(ctx, conn, opts)
}

// Serve accepts connections on ln until ctx is cancelled, running Handle
// on each in its own goroutine. It closes ln and waits for in-flight
// handshakes before returning.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	if s.hostKey == nil {
		return errors.New("handshake: serving needs a host key")
	}
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	glog.Infof("handshake: serving on %s with host key %s", ln.Addr(), s.hostKey.Fingerprint())
	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Handle(ctx, c)
			if err != nil {
				glog.Warningf("handshake: %s: %v", c.RemoteAddr(), err)
				return
			}
			glog.Infof("handshake: %s: %s complete, H=%x", c.RemoteAddr(), res.Method, res.H)
		}()
	}
}

// Compile-time assertion that Service implements domain.HandshakeService.
var _ domain.HandshakeService = (*Service)(nil)
