package sigil

import "log"

// Logger receives non-fatal render diagnostics: missing resources, bad
// glyph data, font-family resolution outcomes. Shape matches
// go-text/typesetting/fontscan's Logger interface
// (other_examples/83134028_cogentcore-typesetting__fontscan-fontmap.go.go),
// generalizing ad hoc fmt.Println diagnostic prints into something callers
// can redirect or silence.
type Logger interface {
	Printf(format string, args ...any)
}

// stdLogger adapts the standard library's *log.Logger to Logger, the
// default used when New is called with no WithLogger option, mirroring
// fontscan.SystemFonts's own log.New(log.Writer(), "fontscan", log.Flags())
// fallback.
type stdLogger struct {
	l *log.Logger
}

func newStdLogger() *stdLogger {
	return &stdLogger{l: log.New(log.Writer(), "sigil: ", log.LstdFlags)}
}

func (s *stdLogger) Printf(format string, args ...any) {
	s.l.Printf(format, args...)
}

// nopLogger discards every diagnostic, usable via WithLogger(nil) semantics
// or explicitly for tests that assert on render output, not log noise.
type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
