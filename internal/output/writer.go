package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/nicolasacchi/sessioncli/internal/notify"
)

const prefix = "sessioncli:"

// Mode controls JSON formatting behavior.
type Mode int

const (
	ModeAuto    Mode = iota // Detect TTY: pretty if terminal, compact if piped
	ModePretty              // Force indented JSON
	ModeCompact             // Force single-line JSON
	ModeRaw                 // Pass through raw bytes (for --raw flag)
)

// Printer manages output formatting.
type Printer struct {
	stdout io.Writer
	stderr io.Writer
	mode   Mode
	quiet  bool
}

// NewPrinter creates a Printer.
func NewPrinter(stdout, stderr io.Writer, mode Mode, quiet bool) *Printer {
	if quiet {
		color.NoColor = true
	}
	return &Printer{
		stdout: stdout,
		stderr: stderr,
		mode:   mode,
		quiet:  quiet,
	}
}

// JSON writes v as JSON to stdout.
func (p *Printer) JSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return p.RawJSON(data)
}

// RawJSON writes pre-encoded JSON to stdout, reformatted for the current mode
// with key order kept. Raw mode and bodies that are not JSON pass through.
func (p *Printer) RawJSON(data []byte) error {
	var buf bytes.Buffer
	switch p.effectiveMode() {
	case ModePretty:
		if json.Indent(&buf, data, "", "  ") == nil {
			data = buf.Bytes()
		}
	case ModeCompact:
		if json.Compact(&buf, data) == nil {
			data = buf.Bytes()
		}
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	_, err := p.stdout.Write(data)
	return err
}

var (
	errorColor = color.New(color.FgRed)
	warnColor  = color.New(color.FgYellow)
	infoColor  = color.New(color.FgCyan)
	titleColor = color.New(color.FgRed, color.Bold)
)

func (p *Printer) line(c *color.Color, format string, args []interface{}) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.stderr, "%s %s\n", c.Sprint(prefix), fmt.Sprintf(format, args...))
}

// Error writes an error message to stderr.
func (p *Printer) Error(format string, args ...interface{}) {
	p.line(errorColor, format, args)
}

// Warn writes a warning message to stderr.
func (p *Printer) Warn(format string, args ...interface{}) {
	p.line(warnColor, format, args)
}

// Info writes an informational message to stderr.
func (p *Printer) Info(format string, args ...interface{}) {
	p.line(infoColor, format, args)
}

// Notify renders a notification on stderr, even in quiet mode: it is the
// only report of a failed call.
func (p *Printer) Notify(n notify.Notification) {
	fmt.Fprintf(p.stderr, "%s %s: %s\n", errorColor.Sprint(prefix), titleColor.Sprint(n.Title), n.Description)
}

// IsRaw returns true if the output mode is raw.
func (p *Printer) IsRaw() bool {
	return p.mode == ModeRaw
}

func (p *Printer) effectiveMode() Mode {
	if p.mode != ModeAuto {
		return p.mode
	}
	if f, ok := p.stdout.(*os.File); ok && isTerminal(f) {
		return ModePretty
	}
	return ModeCompact
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ModeFromFlags converts CLI flag values to a Mode.
// Priority: raw > compact > pretty > auto.
func ModeFromFlags(pretty, compact, raw bool) Mode {
	switch {
	case raw:
		return ModeRaw
	case compact:
		return ModeCompact
	case pretty:
		return ModePretty
	default:
		return ModeAuto
	}
}
