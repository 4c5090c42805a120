package process

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func useHelper(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "PROCESS_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestRunCapturesOutput(t *testing.T) {
	useHelper(t, "success")

	res, err := NewExec(nil).Run(context.Background(), "tool", nil, time.Minute)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if !res.Success() {
		t.Fatalf("Success() = false, result = %+v", res)
	}
	if got := strings.TrimSpace(string(res.Stdout)); got != "line one\nline two" {
		t.Errorf("Stdout = %q", got)
	}
}

func TestRunReportsExitCodeAndDiagnostic(t *testing.T) {
	useHelper(t, "fail")

	res, err := NewExec(nil).Run(context.Background(), "tool", nil, time.Minute)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if got := res.LastLine(); got != "ERROR: final diagnostic" {
		t.Errorf("LastLine() = %q", got)
	}
}

func TestRunTimeout(t *testing.T) {
	useHelper(t, "hang")

	res, err := NewExec(nil).Run(context.Background(), "tool", nil, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if !res.TimedOut {
		t.Fatalf("TimedOut = false, result = %+v", res)
	}
	if res.Success() {
		t.Error("timed out run reported success")
	}
	if res.Elapsed > 5*time.Second {
		t.Errorf("Elapsed = %v, process was not killed promptly", res.Elapsed)
	}
}

func TestRunCancelled(t *testing.T) {
	useHelper(t, "hang")

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	res, err := NewExec(nil).Run(ctx, "tool", nil, 0)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if !res.Cancelled || res.TimedOut {
		t.Errorf("result = %+v, want cancelled", res)
	}
}

func TestRunMissingBinary(t *testing.T) {
	_, err := NewExec(nil).Run(context.Background(), "skylark-no-such-binary", nil, time.Second)
	if err == nil {
		t.Fatal("Run of missing binary returned nil error")
	}
}

func TestStreamDeliversLines(t *testing.T) {
	useHelper(t, "stream")

	var lines []string
	res, err := NewExec(nil).Stream(context.Background(), "tool", nil, time.Minute, func(line []byte) {
		lines = append(lines, string(line))
	})
	if err != nil {
		t.Fatalf("Stream error = %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d", res.ExitCode)
	}
	want := []string{"first", "second", "third"}
	if fmt.Sprint(lines) != fmt.Sprint(want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestTailBufferKeepsSuffix(t *testing.T) {
	tb := &tailBuffer{limit: 5}
	tb.Write([]byte("abc"))
	tb.Write([]byte("defgh"))
	if got := string(tb.Bytes()); got != "defgh" {
		t.Errorf("Bytes() = %q, want defgh", got)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("PROCESS_HELPER_MODE") {
	case "success":
		fmt.Fprintln(os.Stdout, "line one")
		fmt.Fprintln(os.Stdout, "line two")
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "WARNING: something")
		fmt.Fprintln(os.Stderr, "ERROR: final diagnostic")
		os.Exit(3)
	case "stream":
		fmt.Fprint(os.Stdout, "first\nsecond\r\n\nthird")
		os.Exit(0)
	case "hang":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	default:
		os.Exit(2)
	}
}
