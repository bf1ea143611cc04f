package process

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRunEcho(t *testing.T) {
	result, err := Run(context.Background(), Command{
		Binary: "echo",
		Args:   []string{"hello", "world"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", result.ExitCode)
	}
	if out := strings.TrimSpace(string(result.Stdout)); out != "hello world" {
		t.Fatalf("expected 'hello world', got %q", out)
	}
}

func TestRunStdin(t *testing.T) {
	result, err := Run(context.Background(), Command{
		Binary: "cat",
		Stdin:  strings.NewReader("from stdin"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := string(result.Stdout); out != "from stdin" {
		t.Fatalf("expected 'from stdin', got %q", out)
	}
}

func TestRunExitCodeIncludesStderr(t *testing.T) {
	result, err := Run(context.Background(), Command{
		Binary: "sh",
		Args:   []string{"-c", "echo first >&2; echo 'Invalid data found' >&2; exit 42"},
	})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if result.ExitCode != 42 {
		t.Fatalf("expected exit code 42, got %d", result.ExitCode)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Errorf("error should carry stderr tail: %v", err)
	}
}

func TestRunEnv(t *testing.T) {
	result, err := Run(context.Background(), Command{
		Binary: "sh",
		Args:   []string{"-c", "echo $PODSEG_PROC_TEST"},
		Env:    []string{"PODSEG_PROC_TEST=42"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(result.Stdout)) != "42" {
		t.Errorf("stdout = %q", result.Stdout)
	}
}

func TestRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Run(ctx, Command{
		Binary:      "sleep",
		Args:        []string{"10"},
		GracePeriod: 500 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error from context cancellation")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("process was not stopped promptly")
	}
}

func TestRunEmptyBinary(t *testing.T) {
	if _, err := Run(context.Background(), Command{}); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestTail(t *testing.T) {
	out := []byte("a\n\nb\nc\n\nd\n")
	if got := Tail(out, 2); got != "c\nd" {
		t.Errorf("Tail = %q", got)
	}
	if got := Tail(nil, 3); got != "" {
		t.Errorf("Tail(nil) = %q", got)
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Binary: "ffmpeg", Args: []string{"-i", "in.mp3", "out.wav"}}
	if c.String() != "ffmpeg -i in.mp3 out.wav" {
		t.Errorf("String = %q", c.String())
	}
}
