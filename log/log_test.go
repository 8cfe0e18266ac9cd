package log

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

// TestSetLevel verifies that SetLevel correctly updates the underlying
// zap atomic level according to the provided level string.
func TestSetLevel(t *testing.T) {
	cases := []struct {
		in       string
		expected zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{LevelFatal, zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel}, // default branch
	}

	for _, c := range cases {
		SetLevel(c.in)
		if got := zapLevel.Level(); got != c.expected {
			t.Fatalf("SetLevel(%q) = %v; want %v", c.in, got, c.expected)
		}
	}
}

// TestPackageHelpersForward ensures the package-level helpers delegate
// to Default.
func TestPackageHelpersForward(t *testing.T) {
	stub := &stubLogger{}
	oldDefault := Default
	Default = stub
	t.Cleanup(func() { Default = oldDefault })

	Debugf("d %s", "x")
	Infof("i %s", "x")
	Warnf("w %s", "x")
	Errorf("e %s", "x")

	if stub.calls != 4 {
		t.Fatalf("expected 4 forwarded calls, got %d", stub.calls)
	}
}

// stubLogger is a minimal Logger that counts formatted calls.
type stubLogger struct {
	calls int
}

func (s *stubLogger) Debug(args ...any)                 {}
func (s *stubLogger) Debugf(format string, args ...any) { s.calls++ }
func (s *stubLogger) Info(args ...any)                  {}
func (s *stubLogger) Infof(format string, args ...any)  { s.calls++ }
func (s *stubLogger) Warn(args ...any)                  {}
func (s *stubLogger) Warnf(format string, args ...any)  { s.calls++ }
func (s *stubLogger) Error(args ...any)                 {}
func (s *stubLogger) Errorf(format string, args ...any) { s.calls++ }
func (s *stubLogger) Fatal(args ...any)                 {}
func (s *stubLogger) Fatalf(format string, args ...any) { s.calls++ }
