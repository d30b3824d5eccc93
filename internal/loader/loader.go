// Package loader handles program file loading operations.
package loader

import (
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/cespare/xxhash"
	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/chip8emu/internal/detector"
)

// ErrEmptyArchive is returned for archives that do not contain a regular file.
var ErrEmptyArchive = errors.New("archive contains no program file")

// Image is a loaded program image.
type Image struct {
	Name string // file name of the program, for archives the name of the member
	Data []byte
	Hash uint64 // xxhash64 of the data
}

// Loader handles loading program files from disk.
type Loader struct{}

// New creates a new program loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the program file and unpacks it based on the container format.
// Archives are unpacked to their first regular file.
func (l *Loader) Load(path string, format detector.Format) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	name := filepath.Base(path)
	var data []byte

	switch format {
	case detector.Raw:
		data, err = readLimited(file)

	case detector.Gzip:
		name = strings.TrimSuffix(name, filepath.Ext(name))
		data, err = readGzip(file)

	case detector.Zip, detector.SevenZip:
		info, statErr := file.Stat()
		if statErr != nil {
			return nil, fmt.Errorf("getting file info of %s: %w", path, statErr)
		}
		if format == detector.Zip {
			name, data, err = readZip(file, info.Size())
		} else {
			name, data, err = readSevenZip(file, info.Size())
		}

	default:
		return nil, fmt.Errorf("unsupported file format %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s file %s: %w", format, path, err)
	}

	return NewImage(name, data), nil
}

// NewImage creates an image for program data that is already in memory.
func NewImage(name string, data []byte) *Image {
	return &Image{
		Name: name,
		Data: data,
		Hash: xxhash.Sum64(data),
	}
}

// readLimited reads at most one byte more than fits into memory, so that
// oversized members of compressed files are rejected without unpacking them
// completely.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, chip8.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	if len(data) > chip8.MaxProgramSize {
		return nil, fmt.Errorf("%w: more than %d bytes", chip8.ErrLoadTooLarge, chip8.MaxProgramSize)
	}
	return data, nil
}

func readGzip(r io.Reader) ([]byte, error) {
	decoder, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() { _ = decoder.Close() }()

	return readLimited(decoder)
}

// archiveFile is a member of a zip or 7z archive.
type archiveFile interface {
	FileInfo() fs.FileInfo
	Open() (io.ReadCloser, error)
}

func readZip(r io.ReaderAt, size int64) (string, []byte, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return "", nil, fmt.Errorf("creating zip reader: %w", err)
	}

	files := make([]archiveFile, 0, len(archive.File))
	for _, file := range archive.File {
		files = append(files, file)
	}
	return readFirstFile(files)
}

func readSevenZip(r io.ReaderAt, size int64) (string, []byte, error) {
	archive, err := sevenzip.NewReader(r, size)
	if err != nil {
		return "", nil, fmt.Errorf("creating 7z reader: %w", err)
	}

	files := make([]archiveFile, 0, len(archive.File))
	for _, file := range archive.File {
		files = append(files, file)
	}
	return readFirstFile(files)
}

func readFirstFile(files []archiveFile) (string, []byte, error) {
	for _, file := range files {
		info := file.FileInfo()
		if !info.Mode().IsRegular() {
			continue
		}

		reader, err := file.Open()
		if err != nil {
			return "", nil, fmt.Errorf("opening archive file %s: %w", info.Name(), err)
		}
		data, err := readLimited(reader)
		_ = reader.Close()
		if err != nil {
			return "", nil, fmt.Errorf("reading archive file %s: %w", info.Name(), err)
		}
		return info.Name(), data, nil
	}
	return "", nil, ErrEmptyArchive
}

