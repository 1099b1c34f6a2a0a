package transport

import (
	"fmt"
	"net"

	"github.com/cuas-radar/tracker/internal/tracker/logging"
)

// TrackSender writes pre-encoded track table messages to a UDP socket.
type TrackSender struct {
	address string
	conn    *net.UDPConn
}

// NewTrackSender dials a UDP socket toward address. The connection is
// established eagerly so Send never pays a resolve/dial cost per call.
func NewTrackSender(address string) (*TrackSender, error) {
	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to resolve sender address: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to dial %s: %w", address, err)
	}
	return &TrackSender{address: address, conn: conn}, nil
}

// Send writes one pre-encoded message. Errors are logged, not returned,
// since a dropped track table is recoverable on the next cycle.
func (s *TrackSender) Send(buf []byte) {
	if s.conn == nil {
		return
	}
	if _, err := s.conn.Write(buf); err != nil {
		logging.Warn(logModule, "failed to send track table to %s: %v", s.address, err)
	}
}

// Close releases the underlying socket.
func (s *TrackSender) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
