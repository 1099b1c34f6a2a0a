// Package binlog implements the tracker's binary replay log: a flat file
// of magic-prefixed, typed, timestamped records capturing every stage of
// the per-dwell pipeline for offline inspection and golden-replay testing.
package binlog

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

// Magic identifies a well-formed log file / record.
const Magic uint32 = 0xCAFEBABE

// RecordType enumerates the nine pipeline stages a record can capture.
type RecordType uint32

const (
	RecordRaw RecordType = iota
	RecordPreprocessed
	RecordClustered
	RecordPredicted
	RecordAssociated
	RecordInitiated
	RecordUpdated
	RecordDeleted
	RecordSent
)

// Header is the fixed 20-byte prefix of every record.
type Header struct {
	Magic       uint32
	RecordType  uint32
	TimestampUs uint64
	PayloadSize uint32
}

const headerSize = 20

// Writer appends records to an open log file. Safe for concurrent use.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

// Open creates (or truncates) the log file at path for writing.
func Open(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("binlog: failed to open %q: %w", path, err)
	}
	return &Writer{file: f}, nil
}

// IsOpen reports whether the writer still holds an open file handle.
func (w *Writer) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file != nil
}

// Close flushes and releases the underlying file handle. Safe to call more
// than once.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// WriteRecord appends one typed, timestamped record.
func (w *Writer) WriteRecord(recordType RecordType, timestampUs uint64, payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return fmt.Errorf("binlog: writer is closed")
	}

	buf := make([]byte, headerSize+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(recordType))
	binary.LittleEndian.PutUint64(buf[8:16], timestampUs)
	binary.LittleEndian.PutUint32(buf[16:20], uint32(len(payload)))
	copy(buf[headerSize:], payload)

	_, err := w.file.Write(buf)
	return err
}

// Reader streams records back out of a log file previously produced by
// Writer.
type Reader struct {
	r io.Reader
}

// NewReader wraps an io.Reader positioned at the start of a log file.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadHeader reads the next record's header, or io.EOF at a clean end of
// stream.
func (rd *Reader) ReadHeader() (Header, error) {
	var raw [headerSize]byte
	if _, err := io.ReadFull(rd.r, raw[:]); err != nil {
		return Header{}, err
	}
	h := Header{
		Magic:       binary.LittleEndian.Uint32(raw[0:4]),
		RecordType:  binary.LittleEndian.Uint32(raw[4:8]),
		TimestampUs: binary.LittleEndian.Uint64(raw[8:16]),
		PayloadSize: binary.LittleEndian.Uint32(raw[16:20]),
	}
	if h.Magic != Magic {
		return Header{}, fmt.Errorf("binlog: bad magic 0x%08x", h.Magic)
	}
	return h, nil
}

// ReadPayload reads exactly h.PayloadSize bytes following a header returned
// by ReadHeader.
func (rd *Reader) ReadPayload(h Header) ([]byte, error) {
	payload := make([]byte, h.PayloadSize)
	if _, err := io.ReadFull(rd.r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
