// Package transport implements the ambient UDP socket plumbing that sits
// outside the tracker's core: a detection receiver that decodes inbound
// dwell messages and hands them to the pipeline, and a track sender that
// serializes outbound track tables onto the wire. Neither participates in
// tracking logic; both exist purely to cross the process boundary the core
// is built to be agnostic of.
package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/cuas-radar/tracker/internal/tracker/detection"
	"github.com/cuas-radar/tracker/internal/tracker/logging"
	"github.com/cuas-radar/tracker/internal/tracker/wire"
)

const logModule = "transport"

// DwellReceiver reads detection dwell messages off a UDP socket and invokes
// onDwell for each one successfully decoded.
type DwellReceiver struct {
	address  string
	rcvBuf   int
	conn     *net.UDPConn
	onDwell  func(detection.Dwell)
	maxFrame int
}

// ReceiverConfig configures a DwellReceiver.
type ReceiverConfig struct {
	Address       string
	ReceiveBuffer int
	OnDwell       func(detection.Dwell)
}

// NewDwellReceiver constructs a receiver bound to cfg.Address once Start is
// called.
func NewDwellReceiver(cfg ReceiverConfig) *DwellReceiver {
	return &DwellReceiver{
		address:  cfg.Address,
		rcvBuf:   cfg.ReceiveBuffer,
		onDwell:  cfg.OnDwell,
		maxFrame: 65536,
	}
}

// Start opens the UDP socket and blocks, dispatching decoded dwells to
// onDwell, until ctx is canceled or an unrecoverable error occurs.
func (r *DwellReceiver) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", r.address)
	if err != nil {
		return fmt.Errorf("transport: failed to resolve receiver address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("transport: failed to listen on %s: %w", r.address, err)
	}
	r.conn = conn
	defer conn.Close()

	if r.rcvBuf > 0 {
		if err := conn.SetReadBuffer(r.rcvBuf); err != nil {
			logging.Warn(logModule, "failed to set receive buffer to %d: %v", r.rcvBuf, err)
		}
	}

	logging.Info(logModule, "dwell receiver listening on %s", r.address)

	buf := make([]byte, r.maxFrame)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Warn(logModule, "UDP read error: %v", err)
			continue
		}

		dwell, err := wire.DecodeDwell(buf[:n])
		if err != nil {
			logging.Warn(logModule, "dropping malformed dwell message: %v", err)
			continue
		}
		if r.onDwell != nil {
			r.onDwell(dwell)
		}
	}
}

// Close releases the underlying socket.
func (r *DwellReceiver) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
