package archive

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testName = "episode_12.txt"

func TestArchiveRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	archiveDir := t.TempDir()

	original := "[00:00:00] Welcome back to the show.\n\n" +
		"[00:00:04] Today we talk about compilers.\n\n" +
		"[00:00:09] Let's start with parsing.\n\n"

	srcPath := filepath.Join(srcDir, testName)
	if err := os.WriteFile(srcPath, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	archPath, err := Archive(srcPath, archiveDir)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if archPath != filepath.Join(archiveDir, testName+".zst") {
		t.Errorf("archive path = %q", archPath)
	}

	tmpPath, cleanup, err := Decompress(archPath)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	defer cleanup()

	decompressed, err := os.ReadFile(tmpPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(decompressed) != original {
		t.Errorf("decompressed content mismatch\ngot:  %q\nwant: %q", string(decompressed), original)
	}
}

func TestArchiveRejectsCompressedInput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "already.txt.zst")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Archive(src, t.TempDir()); err == nil {
		t.Fatal("expected error archiving a .zst file")
	}
}

func TestOpen_PlainAndCompressed(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, testName)
	content := "[00:00:01] hello\n"
	if err := os.WriteFile(plain, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	compressed, err := Archive(plain, dir)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}

	for _, path := range []string{plain, compressed} {
		rc, err := Open(path)
		if err != nil {
			t.Fatalf("Open(%s): %v", path, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if string(data) != content {
			t.Errorf("%s: got %q, want %q", path, data, content)
		}
	}
}

func TestIsArchived(t *testing.T) {
	archiveDir := t.TempDir()

	if IsArchived(testName, archiveDir) {
		t.Error("should not be archived yet")
	}

	path := ArchivePath(testName, archiveDir)
	if err := os.WriteFile(path, []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !IsArchived(testName, archiveDir) {
		t.Error("should be archived now")
	}
}

func TestArchivePath(t *testing.T) {
	got := ArchivePath("/data/in/talk.txt", "/state/archive")
	want := "/state/archive/talk.txt.zst"
	if got != want {
		t.Errorf("ArchivePath = %q, want %q", got, want)
	}
}

func TestStem(t *testing.T) {
	cases := map[string]string{
		"/a/b/talk.txt": "talk",
		"talk.txt.zst":  "talk",
		"noext":         "noext",
		"dir/ep.1.wav":  "ep.1",
	}
	for in, want := range cases {
		if got := Stem(in); got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
	if !strings.HasSuffix(ArchivePath("x", "d"), Ext) {
		t.Error("archive path should carry the .zst extension")
	}
}
