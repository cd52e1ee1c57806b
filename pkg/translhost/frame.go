package translhost

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// Codec reads and writes native-messaging frames: a 4-byte unsigned
// little-endian length prefix followed by a UTF-8 JSON payload of exactly
// that many bytes. Each call handles one complete frame; nothing is buffered
// across calls. Not safe for concurrent use.
type Codec struct {
	r io.Reader
	w *bufio.Writer
}

// NewCodec wraps a read/write stream pair, typically stdin and stdout.
func NewCodec(r io.Reader, w io.Writer) *Codec {
	return &Codec{r: r, w: bufio.NewWriter(w)}
}

// ReadMessage blocks until one full frame is available and decodes its
// payload. A clean end of stream returns (nil, io.EOF), the orderly
// termination signal. A truncated prefix, short payload, oversized length
// declaration, or JSON decode failure returns a non-EOF error; the stream is
// assumed unrecoverable past that point and no resynchronization is
// attempted.
func (c *Codec) ReadMessage() (*Message, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(c.r, prefix[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("truncated length prefix: %w", err)
	}

	length := binary.LittleEndian.Uint32(prefix[:])
	if length > MaxFrameSize {
		return nil, fmt.Errorf("declared frame length %d exceeds limit %d", length, MaxFrameSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(c.r, payload); err != nil {
		return nil, fmt.Errorf("truncated payload, want %d bytes: %w", length, err)
	}

	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("decode frame payload: %w", err)
	}
	return &msg, nil
}

// Send serializes v to JSON, writes the length prefix and payload, and
// flushes synchronously before returning. Outbound frames are at-most-once:
// the caller logs a returned error and proceeds as if the send succeeded.
func (c *Codec) Send(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := c.w.Write(prefix[:]); err != nil {
		return fmt.Errorf("write length prefix: %w", err)
	}
	if _, err := c.w.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	return nil
}
