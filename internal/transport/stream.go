package transport

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"sshkex/internal/domain"
)

const (
	// maxPacket bounds packet_length; RFC 4253 requires at least 35000.
	maxPacket = 256 * 1024
	blockSize = 8
	minPad    = 4

	maxBannerLine  = 255
	maxBannerLines = 64
)

var (
	// ErrBadPacket is returned for frames that violate RFC 4253 section 6.
	ErrBadPacket = errors.New("transport: malformed packet")

	// ErrBadVersion is returned when the peer's identification string is
	// missing or not SSH 2.0.
	ErrBadVersion = errors.New("transport: bad version banner")
)

// StreamConn frames packets over a byte stream using the binary packet
// protocol with no cipher and no MAC, as in force until the first NEWKEYS.
type StreamConn struct {
	c  io.ReadWriteCloser
	br *bufio.Reader

	wmu sync.Mutex
}

// NewStreamConn wraps c. Call ExchangeVersions before the first packet.
func NewStreamConn(c io.ReadWriteCloser) *StreamConn {
	return &StreamConn{c: c, br: bufio.NewReader(c)}
}

// ExchangeVersions sends local (without CR LF) and returns the peer's
// identification string with CR LF stripped. Lines before it are ignored,
// per RFC 4253 section 4.2.
func (s *StreamConn) ExchangeVersions(ctx context.Context, local string) (string, error) {
	defer s.deadline(ctx)()

	s.wmu.Lock()
	_, err := io.WriteString(s.c, local+"\r\n")
	s.wmu.Unlock()
	if err != nil {
		return "", err
	}

	for i := 0; i < maxBannerLines; i++ {
		line, err := s.readLine()
		if err != nil {
			return "", err
		}
		if !strings.HasPrefix(line, "SSH-") {
			continue
		}
		if !strings.HasPrefix(line, "SSH-2.0-") && !strings.HasPrefix(line, "SSH-1.99-") {
			return "", fmt.Errorf("%w: %q", ErrBadVersion, line)
		}
		return line, nil
	}
	return "", fmt.Errorf("%w: no identification string", ErrBadVersion)
}

func (s *StreamConn) readLine() (string, error) {
	var b []byte
	for len(b) <= maxBannerLine {
		c, err := s.br.ReadByte()
		if err != nil {
			return "", err
		}
		if c == '\n' {
			return strings.TrimSuffix(string(b), "\r"), nil
		}
		b = append(b, c)
	}
	return "", fmt.Errorf("%w: line too long", ErrBadVersion)
}

// deadline applies ctx's deadline to the underlying net.Conn, if any, and
// returns a func that clears it.
func (s *StreamConn) deadline(ctx context.Context) func() {
	nc, ok := s.c.(net.Conn)
	if !ok {
		return func() {}
	}
	if d, ok := ctx.Deadline(); ok {
		_ = nc.SetDeadline(d)
		return func() { _ = nc.SetDeadline(time.Time{}) }
	}
	return func() {}
}

// ReadPacket reads one frame and returns its payload.
func (s *StreamConn) ReadPacket(ctx context.Context) ([]byte, error) {
	defer s.deadline(ctx)()

	var hdr [4]byte
	if _, err := io.ReadFull(s.br, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n < 1+minPad || n > maxPacket {
		return nil, fmt.Errorf("%w: packet_length %d", ErrBadPacket, n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(s.br, body); err != nil {
		return nil, err
	}
	pad := int(body[0])
	if pad < minPad || 1+pad > len(body) {
		return nil, fmt.Errorf("%w: padding_length %d", ErrBadPacket, pad)
	}
	return body[1 : len(body)-pad], nil
}

// WritePacket frames payload with random padding to a multiple of the
// block size.
func (s *StreamConn) WritePacket(ctx context.Context, payload []byte) error {
	pad := blockSize - (5+len(payload))%blockSize
	if pad < minPad {
		pad += blockSize
	}
	frame := make([]byte, 5+len(payload)+pad)
	binary.BigEndian.PutUint32(frame, uint32(1+len(payload)+pad))
	frame[4] = byte(pad)
	copy(frame[5:], payload)
	if _, err := rand.Read(frame[5+len(payload):]); err != nil {
		return err
	}

	defer s.deadline(ctx)()
	s.wmu.Lock()
	defer s.wmu.Unlock()
	_, err := s.c.Write(frame)
	return err
}

// Close closes the underlying stream.
func (s *StreamConn) Close() error { return s.c.Close() }

var _ domain.PacketConn = (*StreamConn)(nil)
