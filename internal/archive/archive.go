package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Ext is the suffix appended to archived files.
const Ext = ".zst"

// Archive compresses srcPath into archiveDir/{base}.zst.
// Returns the archive path.
func Archive(srcPath, archiveDir string) (string, error) {
	name := filepath.Base(srcPath)
	if strings.HasSuffix(name, Ext) {
		return "", fmt.Errorf("%s is already compressed", srcPath)
	}

	destPath := ArchivePath(name, archiveDir)

	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(archiveDir, ".archive-*"+Ext)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, src); err != nil {
		encoder.Close()
		tmp.Close()
		return "", fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("finalize compression: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return "", fmt.Errorf("install archive: %w", err)
	}
	return destPath, nil
}

// Decompress decompresses archivePath to a temp file.
// Returns the temp file path and a cleanup function the caller must defer.
func Decompress(archivePath string) (string, func(), error) {
	src, err := Open(archivePath)
	if err != nil {
		return "", nil, err
	}
	defer src.Close()

	pattern := "podseg-decompress-*" + filepath.Ext(strings.TrimSuffix(archivePath, Ext))
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("decompress: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("close temp: %w", err)
	}

	cleanup := func() { os.Remove(tmp.Name()) }
	return tmp.Name(), cleanup, nil
}

// Open returns a reader over path's contents, decompressing when the name
// ends in .zst.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, Ext) {
		return f, nil
	}
	decoder, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &zstdReadCloser{Decoder: decoder, file: f}, nil
}

type zstdReadCloser struct {
	*zstd.Decoder
	file *os.File
}

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	return z.file.Close()
}

// IsArchived returns true if an archive exists for the named file.
func IsArchived(name, archiveDir string) bool {
	_, err := os.Stat(ArchivePath(name, archiveDir))
	return err == nil
}

// ArchivePath returns the deterministic archive path for a file name.
func ArchivePath(name, archiveDir string) string {
	return filepath.Join(archiveDir, filepath.Base(name)+Ext)
}

// Stem strips the .zst suffix (if any) and the remaining extension.
func Stem(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), Ext)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
