package interfaces

import (
	"context"
	"net"

	domaintypes "sshkex/internal/domain/types"
)

// HandshakeService runs key exchanges over network connections.
type HandshakeService interface {
	// Dial connects to addr and runs the initiator side.
	Dial(ctx context.Context, addr string) (*domaintypes.Result, error)
	// Serve accepts connections on ln and runs the responder side on each
	// until ctx is cancelled.
	Serve(ctx context.Context, ln net.Listener) error
}
