// Package solc runs installed compiler binaries.
package solc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/willibrandon/gosolc/catalog"
	"github.com/willibrandon/gosolc/observability"
	"github.com/willibrandon/gosolc/version"
)

// ErrNoSelection is returned when no version is given and none is selected.
var ErrNoSelection = errors.New("no solc version selected; run `gosolc use <version>` or set " + catalog.VersionEnv)

// SolcError is a failed compiler invocation.
type SolcError struct {
	Message    string
	Command    []string
	ReturnCode int
	Stdout     string
	Stderr     string
	// Errors holds the compiler's error entries for standard JSON runs.
	Errors []Message
}

func (e *SolcError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "solc exited with an error"
	}
	var sb strings.Builder
	sb.WriteString(msg)
	fmt.Fprintf(&sb, "\n> command: `%s`", strings.Join(e.Command, " "))
	fmt.Fprintf(&sb, "\n> return code: `%d`", e.ReturnCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		sb.WriteString("\n> stderr:\n")
		sb.WriteString(s)
	}
	return sb.String()
}

// Executable returns the installed binary for v, or for the current
// selection when v is nil.
func Executable(cat *catalog.Catalog, v *version.Version) (catalog.Installation, error) {
	if v != nil {
		return cat.Installation(*v)
	}

	sel, ok := cat.CurrentVersion()
	if !ok {
		return catalog.Installation{}, ErrNoSelection
	}
	inst, err := cat.Installation(sel.Version)
	var notInstalled *catalog.NotInstalledError
	if errors.As(err, &notInstalled) {
		notInstalled.Source = sel.Source
	}
	return inst, err
}

// Compiler invokes one solc binary.
type Compiler struct {
	Path   string
	Logger observability.Logger
}

// New returns a Compiler for the binary at path.
func New(path string, logger observability.Logger) *Compiler {
	return &Compiler{Path: path, Logger: observability.OrNull(logger)}
}

// Run executes solc with args and returns its standard output. A non-zero
// exit is a *SolcError carrying both output streams.
func (c *Compiler) Run(ctx context.Context, args []string, stdin io.Reader) ([]byte, error) {
	logger := observability.OrNull(c.Logger)

	cmd := exec.CommandContext(ctx, c.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	logger.DebugContext(ctx, "{Path} {Args} finished in {Elapsed}", c.Path, args, time.Since(start))

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("run %s: %w", c.Path, err)
		}
		return stdout.Bytes(), &SolcError{
			Command:    append([]string{c.Path}, args...),
			ReturnCode: exitErr.ExitCode(),
			Stdout:     stdout.String(),
			Stderr:     stderr.String(),
		}
	}
	return stdout.Bytes(), nil
}

// Exec runs solc with the given streams attached, for interactive use.
// A non-zero exit is a *SolcError with the return code; the streams are
// not captured.
func (c *Compiler) Exec(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	observability.OrNull(c.Logger).DebugContext(ctx, "exec {Path} {Args}", c.Path, args)
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &SolcError{
			Command:    append([]string{c.Path}, args...),
			ReturnCode: exitErr.ExitCode(),
		}
	}
	if err != nil {
		return fmt.Errorf("run %s: %w", c.Path, err)
	}
	return nil
}

var versionLine = regexp.MustCompile(`Version:\s*v?(\d+\.\d+\.\d+)`)

// ReportedVersion runs `solc --version` and parses the release it reports.
func (c *Compiler) ReportedVersion(ctx context.Context) (version.Version, error) {
	out, err := c.Run(ctx, []string{"--version"}, nil)
	if err != nil {
		return version.Version{}, err
	}
	m := versionLine.FindSubmatch(out)
	if m == nil {
		return version.Version{}, fmt.Errorf("unrecognized `solc --version` output: %q", strings.TrimSpace(string(out)))
	}
	return version.Parse(string(m[1]))
}
