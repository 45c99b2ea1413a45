// Package archive reads and writes binary snapshots of network-state
// collections across runs. A file holds one record per archived generation:
// the individual count, the per-individual state length, and the population
// arena as a zstd-compressed little-endian float32 blob. The format carries
// no topology information; restoring against a mismatched configuration is
// the caller's error to detect via the recorded counts and sizes.
package archive

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/klauspost/compress/zstd"
)

const (
	magic   = 0x4b414e4e // "KANN"
	version = 1
)

// recordHeader precedes each record's compressed blob.
type recordHeader struct {
	Generation int32
	Count      int32
	StateSize  int32
	BlobLen    int32
}

// Writer appends generation snapshots to an archive file.
type Writer struct {
	f   *os.File
	enc *zstd.Encoder
}

// NewWriter creates (truncating) an archive file and writes the header.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	hdr := [8]byte{}
	binary.LittleEndian.PutUint32(hdr[0:], magic)
	binary.LittleEndian.PutUint32(hdr[4:], version)
	if _, err := f.Write(hdr[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing archive header: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	return &Writer{f: f, enc: enc}, nil
}

// Append writes one generation's population arena. data must hold exactly
// count*stateSize floats.
func (w *Writer) Append(generation, count, stateSize int, data []float32) error {
	if len(data) != count*stateSize {
		return fmt.Errorf("archive: data length %d != count %d * state size %d",
			len(data), count, stateSize)
	}

	raw := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	blob := w.enc.EncodeAll(raw, nil)

	hdr := recordHeader{
		Generation: int32(generation),
		Count:      int32(count),
		StateSize:  int32(stateSize),
		BlobLen:    int32(len(blob)),
	}
	if err := binary.Write(w.f, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("writing record header: %w", err)
	}
	if _, err := w.f.Write(blob); err != nil {
		return fmt.Errorf("writing record blob: %w", err)
	}
	return nil
}

// Close flushes and closes the archive file.
func (w *Writer) Close() error {
	w.enc.Close()
	return w.f.Close()
}

// Snapshot is one extracted generation record. The blob stays compressed
// until Decompress.
type Snapshot struct {
	Generation int
	Count      int
	StateSize  int
	Compressed []byte
}

// Decompress expands the blob into dst, which must hold exactly
// Count*StateSize floats.
func (s Snapshot) Decompress(dst []float32) error {
	if len(dst) != s.Count*s.StateSize {
		return fmt.Errorf("archive: destination length %d != count %d * state size %d",
			len(dst), s.Count, s.StateSize)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(s.Compressed, nil)
	if err != nil {
		return fmt.Errorf("decompressing record: %w", err)
	}
	if len(raw) != 4*len(dst) {
		return fmt.Errorf("archive: decompressed %d bytes, want %d", len(raw), 4*len(dst))
	}
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return nil
}

// Reader provides random access to the records of an archive file.
type Reader struct {
	f       *os.File
	index   map[int]int64 // generation -> record header offset
	headers map[int]recordHeader
}

// OpenReader opens an archive and scans its record index.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	hdr := [8]byte{}
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading archive header: %w", err)
	}
	if binary.LittleEndian.Uint32(hdr[0:]) != magic {
		f.Close()
		return nil, fmt.Errorf("archive: %s is not an archive file", path)
	}
	if v := binary.LittleEndian.Uint32(hdr[4:]); v != version {
		f.Close()
		return nil, fmt.Errorf("archive: unsupported version %d", v)
	}

	r := &Reader{
		f:       f,
		index:   make(map[int]int64),
		headers: make(map[int]recordHeader),
	}
	offset := int64(len(hdr))
	for {
		var rec recordHeader
		if err := binary.Read(f, binary.LittleEndian, &rec); err != nil {
			if err == io.EOF {
				break
			}
			f.Close()
			return nil, fmt.Errorf("scanning archive records: %w", err)
		}
		g := int(rec.Generation)
		r.index[g] = offset
		r.headers[g] = rec
		offset += int64(binary.Size(rec)) + int64(rec.BlobLen)
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			f.Close()
			return nil, fmt.Errorf("scanning archive records: %w", err)
		}
	}
	return r, nil
}

// Generations lists the archived generation indices, sorted ascending.
func (r *Reader) Generations() []int {
	gens := make([]int, 0, len(r.index))
	for g := range r.index {
		gens = append(gens, g)
	}
	sort.Ints(gens)
	return gens
}

// Last returns the highest archived generation index.
func (r *Reader) Last() (int, error) {
	gens := r.Generations()
	if len(gens) == 0 {
		return 0, fmt.Errorf("archive: no records")
	}
	return gens[len(gens)-1], nil
}

// Extract reads one generation's record.
func (r *Reader) Extract(generation int) (Snapshot, error) {
	offset, ok := r.index[generation]
	if !ok {
		return Snapshot{}, fmt.Errorf("archive: generation %d not present (have %v)", generation, r.Generations())
	}
	rec := r.headers[generation]

	blob := make([]byte, rec.BlobLen)
	if _, err := r.f.ReadAt(blob, offset+int64(binary.Size(rec))); err != nil {
		return Snapshot{}, fmt.Errorf("reading record blob: %w", err)
	}
	return Snapshot{
		Generation: generation,
		Count:      int(rec.Count),
		StateSize:  int(rec.StateSize),
		Compressed: blob,
	}, nil
}

// Close closes the archive file.
func (r *Reader) Close() error {
	return r.f.Close()
}
