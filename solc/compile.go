package solc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoSources is returned for standard JSON input without sources.
	ErrNoSources = errors.New("standard JSON input contains no sources")

	// ErrNoContracts is returned when combined JSON output has no contracts.
	ErrNoContracts = errors.New("compiler output contains no contracts")
)

// Options are the path and output flags shared by compile modes.
type Options struct {
	BasePath   string
	AllowPaths []string
	OutputDir  string
	Overwrite  bool
	EVMVersion string
	Optimize   bool
}

func (o Options) args() []string {
	var args []string
	if o.BasePath != "" {
		args = append(args, "--base-path", o.BasePath)
	}
	if len(o.AllowPaths) > 0 {
		args = append(args, "--allow-paths", strings.Join(o.AllowPaths, ","))
	}
	if o.OutputDir != "" {
		args = append(args, "--output-dir", o.OutputDir)
	}
	if o.Overwrite {
		args = append(args, "--overwrite")
	}
	if o.EVMVersion != "" {
		args = append(args, "--evm-version", o.EVMVersion)
	}
	if o.Optimize {
		args = append(args, "--optimize")
	}
	return args
}

// Message is an entry of the standard JSON `errors` array.
type Message struct {
	Severity         string `json:"severity"`
	Type             string `json:"type"`
	Component        string `json:"component"`
	Message          string `json:"message"`
	FormattedMessage string `json:"formattedMessage"`
}

// StandardOutput is the decoded result of a --standard-json run.
type StandardOutput struct {
	Errors    []Message                             `json:"errors,omitempty"`
	Sources   map[string]json.RawMessage            `json:"sources,omitempty"`
	Contracts map[string]map[string]json.RawMessage `json:"contracts,omitempty"`
}

// Warnings returns the non-error messages.
func (o *StandardOutput) Warnings() []Message {
	var out []Message
	for _, m := range o.Errors {
		if m.Severity != "error" {
			out = append(out, m)
		}
	}
	return out
}

// CompileStandard sends input to `solc --standard-json`. Compiler messages
// with severity "error" fail the call with a *SolcError.
func (c *Compiler) CompileStandard(ctx context.Context, input []byte, opts Options) (*StandardOutput, error) {
	var probe struct {
		Sources map[string]json.RawMessage `json:"sources"`
	}
	if err := json.Unmarshal(input, &probe); err != nil {
		return nil, fmt.Errorf("decode standard JSON input: %w", err)
	}
	if len(probe.Sources) == 0 {
		return nil, ErrNoSources
	}

	args := append([]string{"--standard-json"}, opts.args()...)
	stdout, err := c.Run(ctx, args, bytes.NewReader(input))
	if err != nil {
		return nil, err
	}

	var out StandardOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil, fmt.Errorf("decode standard JSON output: %w", err)
	}

	var failures []Message
	var formatted []string
	for _, m := range out.Errors {
		if m.Severity == "error" {
			failures = append(failures, m)
			formatted = append(formatted, strings.TrimSpace(m.FormattedMessage))
		}
	}
	if len(failures) > 0 {
		return &out, &SolcError{
			Message: strings.Join(formatted, "\n"),
			Command: append([]string{c.Path}, args...),
			Stdout:  string(stdout),
			Errors:  failures,
		}
	}
	return &out, nil
}

// Contract is one entry of --combined-json output, keyed by output name.
// A string-encoded `abi` is decoded, and the source `AST` is attached as `ast`.
type Contract map[string]json.RawMessage

// CombinedJSONOutputs asks the binary which --combined-json outputs it supports.
func (c *Compiler) CombinedJSONOutputs(ctx context.Context) ([]string, error) {
	out, err := c.Run(ctx, []string{"--help"}, nil)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(strings.TrimSpace(line), "--combined-json") {
			continue
		}
		fields := strings.Fields(line)
		return strings.Split(fields[len(fields)-1], ","), nil
	}
	return nil, errors.New("solc --help does not list --combined-json outputs")
}

// CompileFiles compiles files with --combined-json. Empty outputs means
// every output the binary supports. Keys of the result are "<file>:<contract>".
func (c *Compiler) CompileFiles(ctx context.Context, files, outputs []string, opts Options) (map[string]Contract, error) {
	if len(outputs) == 0 {
		var err error
		if outputs, err = c.CombinedJSONOutputs(ctx); err != nil {
			return nil, err
		}
	}

	args := append([]string{"--combined-json", strings.Join(outputs, ",")}, opts.args()...)
	args = append(args, files...)
	stdout, err := c.Run(ctx, args, nil)
	if err != nil {
		return nil, err
	}
	return parseCombined(stdout)
}

func parseCombined(data []byte) (map[string]Contract, error) {
	var raw struct {
		Contracts map[string]Contract                   `json:"contracts"`
		Sources   map[string]map[string]json.RawMessage `json:"sources"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode combined JSON output: %w", err)
	}
	if len(raw.Contracts) == 0 {
		return nil, ErrNoContracts
	}

	for key, contract := range raw.Contracts {
		if abi, ok := contract["abi"]; ok {
			var encoded string
			if json.Unmarshal(abi, &encoded) == nil && json.Valid([]byte(encoded)) {
				contract["abi"] = json.RawMessage(encoded)
			}
		}
		file := key
		if i := strings.LastIndex(key, ":"); i >= 0 {
			file = key[:i]
		}
		if ast, ok := raw.Sources[file]["AST"]; ok {
			contract["ast"] = ast
		}
	}
	return raw.Contracts, nil
}
