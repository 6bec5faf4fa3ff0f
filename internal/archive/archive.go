// Package archive bundles rendered charts into a single ZIP file.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/klauspost/compress/zip"

	"github.com/couchcryptid/power-curve-service/internal/domain"
)

// ErrFinished is returned when entries are added to a finished archive.
var ErrFinished = errors.New("archive already finished")

// Image is a rendered chart that is encoded once and then released.
type Image interface {
	WritePNG(w io.Writer) (int64, error)
	Release()
}

// Entry describes one file written to the archive.
type Entry struct {
	Turbine string
	Name    string
	Size    int64

	// Renamed is true when the computed name collided with an earlier entry and
	// a numeric suffix was added.
	Renamed bool
}

// Writer streams charts into an in-memory ZIP archive.
type Writer struct {
	buf     bytes.Buffer
	zw      *zip.Writer
	names   *domain.UniqueNamer
	logger  *slog.Logger
	entries []Entry
	done    bool
}

// NewWriter starts an empty archive.
func NewWriter(logger *slog.Logger) *Writer {
	w := &Writer{names: domain.NewUniqueNamer(), logger: logger}
	w.zw = zip.NewWriter(&w.buf)
	return w
}

// Add writes img under the name computed from the turbine's metadata and then
// releases img, whether or not the write succeeded.
func (w *Writer) Add(turbine string, img Image, md domain.Metadata) (Entry, error) {
	defer img.Release()

	if w.done {
		return Entry{}, ErrFinished
	}

	name, renamed := w.names.Claim(domain.ChartFilename(turbine, md))
	if renamed {
		w.logger.Warn("archive filename collision, added suffix", "turbine", turbine, "name", name)
	}

	f, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: domain.Now(),
	})
	if err != nil {
		return Entry{}, fmt.Errorf("create archive entry %s: %w", name, err)
	}
	n, err := img.WritePNG(f)
	if err != nil {
		return Entry{}, fmt.Errorf("write archive entry %s: %w", name, err)
	}

	e := Entry{Turbine: turbine, Name: name, Size: n, Renamed: renamed}
	w.entries = append(w.entries, e)
	return e, nil
}

// Entries returns the entries written so far, in write order.
func (w *Writer) Entries() []Entry {
	return append([]Entry(nil), w.entries...)
}

// Finish closes the archive and returns its bytes positioned at the start.
func (w *Writer) Finish() (*bytes.Reader, error) {
	if w.done {
		return nil, ErrFinished
	}
	w.done = true
	if err := w.zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return bytes.NewReader(w.buf.Bytes()), nil
}

// Item pairs a turbine with its rendered chart.
type Item struct {
	Turbine string
	Image   Image
}

// Pack writes items in order into one archive, naming each entry from
// metadata[turbine]. Turbines without metadata are filed under NotAvailable
// values. Every image is released, including those after a failure.
func Pack(items []Item, metadata map[string]domain.Metadata, logger *slog.Logger) (*bytes.Reader, []Entry, error) {
	w := NewWriter(logger)
	for i, it := range items {
		md, ok := metadata[it.Turbine]
		if !ok {
			md = domain.Metadata{
				Site:     domain.NotAvailable,
				Customer: domain.NotAvailable,
				Week:     domain.CoerceWeek(domain.NotAvailable),
			}
		}
		if _, err := w.Add(it.Turbine, it.Image, md); err != nil {
			for _, rest := range items[i+1:] {
				rest.Image.Release()
			}
			return nil, nil, err
		}
	}
	r, err := w.Finish()
	if err != nil {
		return nil, nil, err
	}
	return r, w.Entries(), nil
}
