package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"sshkex/internal/crypto"
	"sshkex/internal/domain"
	"sshkex/internal/protocol/groups"
	"sshkex/internal/protocol/kex"
	"sshkex/internal/protocol/wire"
	"sshkex/internal/util/loglevel"
)

// DisconnectError reports an SSH_MSG_DISCONNECT received from the peer.
type DisconnectError struct {
	Reason  uint32
	Message string
}

func (e *DisconnectError) Error() string {
	return fmt.Sprintf("transport: peer disconnected (reason %d): %s", e.Reason, e.Message)
}

// Options configures one Run.
type Options struct {
	Role domain.Role

	// ID tags log lines. Empty means a fresh UUID.
	ID string

	// LocalVersion and RemoteVersion are the identification strings
	// without CR LF.
	LocalVersion  string
	RemoteVersion string

	// Methods lists kex methods by preference. Nil means all supported.
	Methods []string

	// HostKeyAlgos is the initiator's host key preference. Nil means
	// DefaultHostKeyAlgos. Responders offer HostKey's algorithm.
	HostKeyAlgos []string

	HostKey         *crypto.HostKey
	HostKeyCallback domain.HostKeyCallback

	Groups        kex.GroupSelector
	Policy        groups.Policy
	LegacyRequest bool
}

// Run negotiates a method over conn, runs the exchange and swaps NEWKEYS.
// A local kex failure is reported to the peer with SSH_MSG_DISCONNECT
// before Run returns it. conn is closed if ctx ends first.
func Run(ctx context.Context, conn domain.PacketConn, opts Options) (*domain.Result, error) {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Role == domain.Responder && opts.HostKey == nil {
		return nil, errors.New("transport: responder needs a host key")
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	res, err := run(ctx, conn, opts)
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("%w (%v)", ctx.Err(), err)
	}
	return res, err
}

func run(ctx context.Context, conn domain.PacketConn, opts Options) (*domain.Result, error) {
	methods := opts.Methods
	if methods == nil {
		methods = kex.SupportedMethods()
	}
	hostKeyAlgos := opts.HostKeyAlgos
	if opts.Role == domain.Responder {
		hostKeyAlgos = []string{opts.HostKey.Algorithm()}
	} else if hostKeyAlgos == nil {
		hostKeyAlgos = DefaultHostKeyAlgos
	}

	local, err := NewKexInit(methods, hostKeyAlgos)
	if err != nil {
		return nil, err
	}
	localPayload := wire.Marshal(local)
	if err := send(ctx, conn, opts.ID, localPayload); err != nil {
		return nil, err
	}
	remotePayload, err := recv(ctx, conn, opts.ID)
	if err != nil {
		return nil, err
	}
	var remote wire.KexInitMsg
	if err := wire.Unmarshal(remotePayload, wire.MsgKexInit, &remote); err != nil {
		return nil, disconnect(ctx, conn, wire.DisconnectProtocolError, err)
	}

	hs := domain.Handshake{
		ClientVersion: []byte(opts.LocalVersion),
		ServerVersion: []byte(opts.RemoteVersion),
		ClientKexInit: localPayload,
		ServerKexInit: remotePayload,
	}
	client, server := local, &remote
	if opts.Role == domain.Responder {
		hs.ClientVersion, hs.ServerVersion = hs.ServerVersion, hs.ClientVersion
		hs.ClientKexInit, hs.ServerKexInit = hs.ServerKexInit, hs.ClientKexInit
		client, server = server, client
	}
	algs, err := Negotiate(client, server)
	if err != nil {
		return nil, disconnect(ctx, conn, wire.DisconnectKeyExchangeFailed, err)
	}
	if glog.V(loglevel.LvHandshake) {
		glog.Infof("conn %s: %s negotiated kex=%s hostkey=%s", opts.ID, opts.Role, algs.Kex, algs.HostKey)
	}

	cfg := kex.Config{
		Method:          algs.Kex,
		Role:            opts.Role,
		Handshake:       hs,
		HostKeyCallback: opts.HostKeyCallback,
		Groups:          opts.Groups,
		Policy:          opts.Policy,
		LegacyRequest:   opts.LegacyRequest,
	}
	if opts.HostKey != nil {
		cfg.HostKey = opts.HostKey
	}
	ex, err := kex.New(cfg)
	if err != nil {
		return nil, disconnect(ctx, conn, kex.DisconnectReason(err), err)
	}

	res, err := exchange(ctx, conn, opts.ID, ex)
	if err != nil {
		if a, ok := ex.(interface{ Abort() }); ok {
			a.Abort()
		}
		return nil, err
	}

	if err := send(ctx, conn, opts.ID, wire.Marshal(&wire.NewKeysMsg{})); err != nil {
		return nil, err
	}
	p, err := recv(ctx, conn, opts.ID)
	if err != nil {
		return nil, err
	}
	if err := wire.Unmarshal(p, wire.MsgNewKeys, &wire.NewKeysMsg{}); err != nil {
		return nil, disconnect(ctx, conn, wire.DisconnectProtocolError, err)
	}
	if glog.V(loglevel.LvHandshake) {
		glog.Infof("conn %s: %s complete, host key %s", opts.ID, res.Method, crypto.Fingerprint(res.HostKey))
	}
	return res, nil
}

// exchange pumps packets between conn and ex until ex completes.
func exchange(ctx context.Context, conn domain.PacketConn, id string, ex domain.Exchange) (*domain.Result, error) {
	out, err := ex.Start()
	if err != nil {
		return nil, disconnect(ctx, conn, kex.DisconnectReason(err), err)
	}
	for {
		if out != nil {
			if err := send(ctx, conn, id, out); err != nil {
				return nil, err
			}
		}
		if ex.State() == domain.StateComplete {
			return ex.Result()
		}
		in, err := recv(ctx, conn, id)
		if err != nil {
			return nil, err
		}
		if out, err = ex.Handle(in); err != nil {
			return nil, disconnect(ctx, conn, kex.DisconnectReason(err), err)
		}
	}
}

func send(ctx context.Context, conn domain.PacketConn, id string, p []byte) error {
	if glog.V(loglevel.LvMessage) {
		glog.Infof("conn %s: send message %d (%d bytes)", id, wire.TypeOf(p), len(p))
	}
	return conn.WritePacket(ctx, p)
}

// recv reads one packet and turns SSH_MSG_DISCONNECT into a DisconnectError.
func recv(ctx context.Context, conn domain.PacketConn, id string) ([]byte, error) {
	p, err := conn.ReadPacket(ctx)
	if err != nil {
		return nil, err
	}
	if glog.V(loglevel.LvMessage) {
		glog.Infof("conn %s: recv message %d (%d bytes)", id, wire.TypeOf(p), len(p))
	}
	if wire.TypeOf(p) != wire.MsgDisconnect {
		return p, nil
	}
	var d wire.DisconnectMsg
	if err := wire.Unmarshal(p, wire.MsgDisconnect, &d); err != nil {
		return nil, err
	}
	return nil, &DisconnectError{Reason: d.Reason, Message: d.Message}
}

// disconnect tells the peer why the exchange ended and returns cause.
func disconnect(ctx context.Context, conn domain.PacketConn, reason uint32, cause error) error {
	msg := wire.Marshal(&wire.DisconnectMsg{Reason: reason, Message: cause.Error()})
	if err := conn.WritePacket(ctx, msg); err != nil {
		glog.Warningf("transport: send disconnect: %v", err)
	}
	return cause
}
