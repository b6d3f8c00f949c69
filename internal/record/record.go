// Package record stores frame streams as zstd-compressed JSON lines.
package record

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/san-kum/aquarium/internal/sim"
)

const Ext = ".jsonl.zst"

// Writer appends one JSON line per frame. It satisfies sim.Observer; the
// first write error is kept and returned by Close.
type Writer struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
	err error
}

func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Writer{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

func (w *Writer) OnFrame(f sim.Frame) {
	if w.err != nil {
		return
	}
	w.err = w.Write(f)
}

func (w *Writer) Write(f sim.Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.n++
	return nil
}

// Frames is the number of frames written so far.
func (w *Writer) Frames() int { return w.n }

func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil && w.err == nil {
		w.err = err
	}
	if err := w.enc.Close(); err != nil && w.err == nil {
		w.err = err
	}
	if err := w.f.Close(); err != nil && w.err == nil {
		w.err = err
	}
	return w.err
}

// Read calls fn for every frame in the recording at path, in order. A non-nil
// error from fn stops the read and is returned.
func Read(path string, fn func(sim.Frame) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Decode(f, fn)
}

func Decode(r io.Reader, fn func(sim.Frame) error) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		var fr sim.Frame
		if err := json.Unmarshal(sc.Bytes(), &fr); err != nil {
			return fmt.Errorf("record: line %d: %w", line, err)
		}
		if err := fn(fr); err != nil {
			return err
		}
	}
	return sc.Err()
}
