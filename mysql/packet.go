package mysql

import (
	"bufio"
	"io"
)

// maxPacketSize is the threshold at which a logical MySQL packet is split
// across multiple physical packets (protocol docs call this 0xffffff,
// 16MiB-1); a payload that is an exact multiple of it is followed by a
// zero-length terminator packet so the reader can tell "exactly full"
// from "more to come".
const maxPacketSize = 1<<24 - 1

// packetReader reassembles MySQL's 3-byte-length + 1-byte-sequence-id
// physical packets into logical payloads.
type packetReader struct {
	br  *bufio.Reader
	seq byte
}

func newPacketReader(r io.Reader) *packetReader {
	return &packetReader{br: bufio.NewReaderSize(r, 16*1024)}
}

func (p *packetReader) readPacket() ([]byte, error) {
	var payload []byte
	for {
		var hdr [4]byte
		if _, err := io.ReadFull(p.br, hdr[:]); err != nil {
			return nil, err
		}
		length := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16
		p.seq = hdr[3] + 1

		chunk := make([]byte, length)
		if length > 0 {
			if _, err := io.ReadFull(p.br, chunk); err != nil {
				return nil, err
			}
		}
		payload = append(payload, chunk...)
		if length < maxPacketSize {
			return payload, nil
		}
	}
}

func (p *packetReader) resetSeq() {
	p.seq = 0
}

// writePacket frames payload into one or more physical packets and writes
// them using the reader's current sequence counter, then advances it.
func writePacket(w io.Writer, p *packetReader, payload []byte) error {
	for {
		n := len(payload)
		if n > maxPacketSize {
			n = maxPacketSize
		}
		chunk := payload[:n]
		payload = payload[n:]

		hdr := [4]byte{byte(n), byte(n >> 8), byte(n >> 16), p.seq}
		p.seq++
		if _, err := w.Write(hdr[:]); err != nil {
			return err
		}
		if n > 0 {
			if _, err := w.Write(chunk); err != nil {
				return err
			}
		}
		if n < maxPacketSize {
			return nil
		}
	}
}
