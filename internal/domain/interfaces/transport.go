package interfaces

import "context"

// PacketConn moves whole SSH payloads. Framing, encryption and MACs are
// the implementation's business.
type PacketConn interface {
	ReadPacket(ctx context.Context) ([]byte, error)
	WritePacket(ctx context.Context, packet []byte) error
	Close() error
}
