package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Verbosity levels
type Verbosity int

const (
	// VerbosityQuiet shows errors and command results only
	VerbosityQuiet Verbosity = iota
	// VerbosityNormal shows warnings and key operations (default)
	VerbosityNormal
	// VerbosityDetailed shows above + progress details
	VerbosityDetailed
	// VerbosityDiagnostic shows above + debug messages
	VerbosityDiagnostic
)

// ParseVerbosity accepts the full level names and their first letters.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "q", "quiet":
		return VerbosityQuiet, nil
	case "", "n", "normal":
		return VerbosityNormal, nil
	case "d", "detailed":
		return VerbosityDetailed, nil
	case "diag", "diagnostic":
		return VerbosityDiagnostic, nil
	}
	return VerbosityNormal, fmt.Errorf("unknown verbosity %q (quiet, normal, detailed, diagnostic)", s)
}

func (v Verbosity) String() string {
	switch v {
	case VerbosityQuiet:
		return "quiet"
	case VerbosityNormal:
		return "normal"
	case VerbosityDetailed:
		return "detailed"
	case VerbosityDiagnostic:
		return "diagnostic"
	}
	return fmt.Sprintf("Verbosity(%d)", int(v))
}

// Console separates command results from status messages.
//
// Print, Println and Printf write results to the output stream. Status
// messages go to the output stream as well, unless JSON mode is on, in
// which case they move to the error stream so that stdout stays parseable.
type Console struct {
	out       io.Writer
	err       io.Writer
	verbosity Verbosity
	mu        sync.Mutex
	colors    bool
	json      bool
}

// NewConsole creates a new console
func NewConsole(out, err io.Writer, verbosity Verbosity) *Console {
	c := &Console{
		out:       out,
		err:       err,
		verbosity: verbosity,
		colors:    IsColorEnabled(out),
	}

	if !c.colors {
		DisableColors()
	}

	return c
}

// DefaultConsole creates a console with stdout/stderr and normal verbosity
func DefaultConsole() *Console {
	return NewConsole(os.Stdout, os.Stderr, VerbosityNormal)
}

// SetVerbosity sets the verbosity level
func (c *Console) SetVerbosity(v Verbosity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verbosity = v
}

// GetVerbosity returns the current verbosity level
func (c *Console) GetVerbosity() Verbosity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verbosity
}

// SetColors enables or disables color output
func (c *Console) SetColors(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.colors = enabled
	if enabled {
		EnableColors()
	} else {
		DisableColors()
	}
}

// SetJSON routes status messages to the error stream.
func (c *Console) SetJSON(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.json = enabled
}

// Out is the result stream.
func (c *Console) Out() io.Writer { return c.out }

// Err is the error stream.
func (c *Console) Err() io.Writer { return c.err }

// Interactive reports whether the error stream is a terminal, where
// progress can be redrawn in place.
func (c *Console) Interactive() bool {
	return isTerminal(c.err)
}

func (c *Console) messages() io.Writer {
	if c.json {
		return c.err
	}
	return c.out
}

// Print writes to output
func (c *Console) Print(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, a...)
}

// Println writes line to output
func (c *Console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// Printf writes formatted output
func (c *Console) Printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, a...)
}

// WriteJSON writes v as indented JSON to output
func (c *Console) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return WriteJSON(c.out, v)
}

// Success writes success message (green)
func (c *Console) Success(format string, a ...any) {
	if c.verbosity >= VerbosityNormal {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.colored(ColorSuccess, c.messages(), format+"\n", a...)
	}
}

// Error writes error message (red)
func (c *Console) Error(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.colored(ColorError, c.err, "Error: "+format+"\n", a...)
}

// Hint writes a follow-up suggestion for an error
func (c *Console) Hint(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.colored(ColorInfo, c.err, "Hint: "+format+"\n", a...)
}

// Warning writes warning message (yellow)
func (c *Console) Warning(format string, a ...any) {
	if c.verbosity >= VerbosityNormal {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.colored(ColorWarning, c.messages(), "Warning: "+format+"\n", a...)
	}
}

// Info writes info message (cyan)
func (c *Console) Info(format string, a ...any) {
	if c.verbosity >= VerbosityNormal {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.colored(ColorInfo, c.messages(), format+"\n", a...)
	}
}

// Debug writes debug message (white)
func (c *Console) Debug(format string, a ...any) {
	if c.verbosity >= VerbosityDiagnostic {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.colored(ColorDebug, c.messages(), "[DEBUG] "+format+"\n", a...)
	}
}

// Detail writes detailed message
func (c *Console) Detail(format string, a ...any) {
	if c.verbosity >= VerbosityDetailed {
		c.mu.Lock()
		defer c.mu.Unlock()
		fmt.Fprintf(c.messages(), format+"\n", a...)
	}
}

func (c *Console) colored(col colorPrinter, w io.Writer, format string, a ...any) {
	if c.colors {
		_, _ = col.Fprintf(w, format, a...)
		return
	}
	fmt.Fprintf(w, format, a...)
}
