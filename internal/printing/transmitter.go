package printing

import (
	"fmt"
	"net"
	"time"
)

// Transmitter delivers rendered bytes to a printer address. Send is not
// interrupted by cancellation; it completes or fails on its own timeout.
type Transmitter interface {
	Send(address string, data []byte) error
}

// TCPTransmitter writes raw print data to a network printer (port 9100 style).
type TCPTransmitter struct {
	Timeout time.Duration
}

func NewTCPTransmitter(timeout time.Duration) *TCPTransmitter {
	return &TCPTransmitter{Timeout: timeout}
}

func (t *TCPTransmitter) Send(address string, data []byte) error {
	conn, err := net.DialTimeout("tcp", address, t.Timeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", address, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(t.Timeout)); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", address, err)
	}
	return nil
}
