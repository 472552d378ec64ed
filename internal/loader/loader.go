// Package loader handles ROM image loading operations.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/retroenv/retrochip8/internal/vm"
	"github.com/retroenv/retrogolib/set"
)

// ErrEmptyROM is returned for ROM images without any program bytes.
var ErrEmptyROM = errors.New("empty ROM image")

// ROM extensions that are preferred when picking the ROM from an archive.
var romExtensions = newExtensionSet(".ch8", ".c8", ".rom", ".bin")

// Loader handles loading ROM images from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the ROM image from the given file. Raw images are returned as is,
// .gz files are decompressed and for .zip and .7z archives the first ROM file
// of the archive is extracted.
func (l *Loader) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return l.LoadFromBytes(path, data)
}

// LoadFromBytes decodes the ROM image data, the name is used to detect the
// container format by its extension.
func (l *Loader) LoadFromBytes(name string, data []byte) ([]byte, error) {
	var rom []byte
	var err error

	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		rom, err = decompressGzip(data)
	case ".zip":
		rom, err = extractZip(data)
	case ".7z":
		rom, err = extractSevenZip(data)
	default:
		rom = data
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}

	if len(rom) == 0 {
		return nil, ErrEmptyROM
	}
	if len(rom) > vm.MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes, maximum is %d", vm.ErrProgramTooLarge, len(rom), vm.MaxProgramSize)
	}
	return rom, nil
}

func decompressGzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer func() { _ = reader.Close() }()

	return readLimited(reader)
}

// archiveEntry is a file inside an archive.
type archiveEntry struct {
	name string
	dir  bool
	open func() (io.ReadCloser, error)
}

func extractZip(data []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening zip archive: %w", err)
	}

	entries := make([]archiveEntry, 0, len(reader.File))
	for _, file := range reader.File {
		entries = append(entries, archiveEntry{
			name: file.Name,
			dir:  file.FileInfo().IsDir(),
			open: file.Open,
		})
	}
	return extractEntry(entries)
}

func extractSevenZip(data []byte) ([]byte, error) {
	reader, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening 7z archive: %w", err)
	}

	entries := make([]archiveEntry, 0, len(reader.File))
	for _, file := range reader.File {
		entries = append(entries, archiveEntry{
			name: file.Name,
			dir:  file.FileInfo().IsDir(),
			open: file.Open,
		})
	}
	return extractEntry(entries)
}

// extractEntry reads the first file with a known ROM extension, or the first
// file of the archive if none has one.
func extractEntry(entries []archiveEntry) ([]byte, error) {
	var selected *archiveEntry
	for i := range entries {
		entry := &entries[i]
		if entry.dir {
			continue
		}
		if romExtensions.Contains(strings.ToLower(filepath.Ext(entry.name))) {
			selected = entry
			break
		}
		if selected == nil {
			selected = entry
		}
	}
	if selected == nil {
		return nil, errors.New("archive does not contain any file")
	}

	reader, err := selected.open()
	if err != nil {
		return nil, fmt.Errorf("opening archive file %s: %w", selected.name, err)
	}
	defer func() { _ = reader.Close() }()

	return readLimited(reader)
}

// readLimited reads at most one byte more than the largest possible program,
// which is enough to report oversized images without reading them fully.
func readLimited(reader io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(reader, vm.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	return data, nil
}

func newExtensionSet(extensions ...string) set.Set[string] {
	s := set.New[string]()
	for _, ext := range extensions {
		s.Add(ext)
	}
	return s
}
