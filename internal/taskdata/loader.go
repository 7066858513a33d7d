package taskdata

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ErrMissingTimeLog is returned when a run's binary file cannot be located.
// Callers skip the run rather than failing; the schema alone still yields a
// task result.
var ErrMissingTimeLog = errors.New("time-log binary not found")

const taskDataFile = "TASKDATA.XML"

// Dir provides access to one task-data directory. Task files come off FAT
// media where name casing is unreliable, so every lookup is case-insensitive.
// Files archived with a .zst suffix are decompressed transparently.
type Dir struct {
	path  string
	names map[string]string // upper-cased name -> actual name on disk
}

// OpenDir indexes a task-data directory.
func OpenDir(path string) (*Dir, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("invalid task-data path %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("task-data path %s is not a directory", path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read task-data directory: %w", err)
	}

	names := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names[strings.ToUpper(e.Name())] = e.Name()
	}

	return &Dir{path: path, names: names}, nil
}

// Path returns the directory path the Dir was opened with.
func (d *Dir) Path() string {
	return d.path
}

// LoadDocument reads TASKDATA.XML, loads every external fragment it
// references, and returns the merged document. A missing or unparsable
// document or fragment is fatal to the whole operation.
func (d *Dir) LoadDocument() (*Document, error) {
	data, err := d.readFile(taskDataFile)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", taskDataFile, err)
	}
	primary, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", taskDataFile, err)
	}

	fragments := make(map[string]*Document, len(primary.ExternalRefs))
	for _, ref := range primary.ExternalRefs {
		name := ref.Filename + ".XML"
		data, err := d.readFile(name)
		if err != nil {
			return nil, fmt.Errorf("load fragment %s: %w", name, err)
		}
		frag, err := ParseDocument(data)
		if err != nil {
			return nil, fmt.Errorf("parse fragment %s: %w", name, err)
		}
		fragments[ref.Filename] = frag
	}

	return Merge(primary, fragments), nil
}

// RunDescriptor loads and parses the header descriptor for one run, e.g.
// "TLG00001" -> TLG00001.XML.
func (d *Dir) RunDescriptor(name string) (*TimeLogHeader, error) {
	data, err := d.readFile(name + ".XML")
	if err != nil {
		return nil, fmt.Errorf("load run descriptor %s: %w", name, err)
	}
	hdr, err := ParseTimeLogHeader(data)
	if err != nil {
		return nil, fmt.Errorf("parse run descriptor %s: %w", name, err)
	}
	return hdr, nil
}

// RunData opens the binary stream for one run, e.g. "TLG00001" ->
// TLG00001.BIN. The caller owns the returned stream and must close it on
// every exit path. A run with no binary file is ErrMissingTimeLog.
func (d *Dir) RunData(name string) (io.ReadCloser, error) {
	actual, compressed, ok := d.locate(name + ".BIN")
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingTimeLog, name)
	}

	f, err := os.Open(filepath.Join(d.path, actual))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", actual, err)
	}
	if !compressed {
		return f, nil
	}

	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open zstd stream %s: %w", actual, err)
	}
	return &zstdReadCloser{Decoder: zr, file: f}, nil
}

// locate finds a file by case-insensitive name, preferring the plain file
// over a .zst-compressed sibling.
func (d *Dir) locate(name string) (actual string, compressed bool, ok bool) {
	upper := strings.ToUpper(name)
	if actual, ok := d.names[upper]; ok {
		return actual, false, true
	}
	if actual, ok := d.names[upper+".ZST"]; ok {
		return actual, true, true
	}
	return "", false, false
}

func (d *Dir) readFile(name string) ([]byte, error) {
	actual, compressed, ok := d.locate(name)
	if !ok {
		return nil, fmt.Errorf("%s not found in %s", name, d.path)
	}

	data, err := os.ReadFile(filepath.Join(d.path, actual))
	if err != nil {
		return nil, err
	}
	if !compressed {
		return data, nil
	}

	zr, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer zr.Close()
	out, err := zr.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress %s: %w", actual, err)
	}
	return out, nil
}

type zstdReadCloser struct {
	*zstd.Decoder
	file *os.File
}

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	return z.file.Close()
}
