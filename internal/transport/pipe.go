package transport

import (
	"context"
	"errors"
	"sync"

	"sshkex/internal/domain"
)

// ErrClosed is returned by operations on a closed connection.
var ErrClosed = errors.New("transport: connection closed")

// PipeConn is one end of an in-memory packet pipe.
type PipeConn struct {
	in  <-chan []byte
	out chan<- []byte

	done      chan struct{} // shared by both ends
	closeOnce *sync.Once
}

// Pipe returns two connected ends. Packets written to one are read from
// the other, in order. Closing either end closes both.
func Pipe() (*PipeConn, *PipeConn) {
	ab := make(chan []byte, 4)
	ba := make(chan []byte, 4)
	done := make(chan struct{})
	once := new(sync.Once)
	a := &PipeConn{in: ba, out: ab, done: done, closeOnce: once}
	b := &PipeConn{in: ab, out: ba, done: done, closeOnce: once}
	return a, b
}

// ReadPacket returns the next packet, blocking until one arrives, the
// pipe closes or ctx is done.
func (p *PipeConn) ReadPacket(ctx context.Context) ([]byte, error) {
	select {
	case b := <-p.in:
		return b, nil
	case <-p.done:
		// Drain what was written before the close.
		select {
		case b := <-p.in:
			return b, nil
		default:
			return nil, ErrClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// WritePacket queues a copy of packet for the peer.
func (p *PipeConn) WritePacket(ctx context.Context, packet []byte) error {
	b := append([]byte(nil), packet...)
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	select {
	case p.out <- b:
		return nil
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes both ends.
func (p *PipeConn) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	return nil
}

var _ domain.PacketConn = (*PipeConn)(nil)
