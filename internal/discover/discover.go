package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/suykerbuyk/podseg/internal/archive"
)

// ReportSuffix marks generated topic reports, which are never treated as
// transcripts.
const ReportSuffix = "_topics"

// TranscriptFile represents a discovered transcript on disk.
type TranscriptFile struct {
	Path       string
	Stem       string // file name without .txt/.zst
	Compressed bool   // true for .txt.zst
	ModTime    int64  // unix timestamp for sorting
}

// IsTranscript reports whether a file name looks like a transcript:
// *.txt or *.txt.zst, not hidden, not a generated report.
func IsTranscript(name string) bool {
	name = filepath.Base(name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	base := strings.TrimSuffix(name, archive.Ext)
	if !strings.HasSuffix(base, ".txt") {
		return false
	}
	return !strings.HasSuffix(strings.TrimSuffix(base, ".txt"), ReportSuffix)
}

// Discover walks basePath recursively and returns all transcript files,
// sorted by modification time (oldest first). Hidden directories are
// skipped.
func Discover(basePath string) ([]TranscriptFile, error) {
	var results []TranscriptFile

	err := filepath.Walk(basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if info.IsDir() {
			if path != basePath && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || !IsTranscript(path) {
			return nil
		}

		results = append(results, fileFor(path, info))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ModTime != results[j].ModTime {
			return results[i].ModTime < results[j].ModTime
		}
		return results[i].Path < results[j].Path
	})

	return results, nil
}

// Resolve expands a command-line argument: a file is returned as-is (any
// name is accepted), a directory is discovered.
func Resolve(arg string) ([]TranscriptFile, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []TranscriptFile{fileFor(arg, info)}, nil
	}
	files, err := Discover(arg)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no transcripts (*.txt, *.txt.zst) under %s", arg)
	}
	return files, nil
}

func fileFor(path string, info os.FileInfo) TranscriptFile {
	return TranscriptFile{
		Path:       path,
		Stem:       archive.Stem(path),
		Compressed: strings.HasSuffix(path, archive.Ext),
		ModTime:    info.ModTime().Unix(),
	}
}
