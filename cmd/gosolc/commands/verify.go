package commands

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gosolc/catalog"
	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
	"github.com/willibrandon/gosolc/version"
)

type verifyOptions struct {
	noRepair bool
	format   string
}

// NewVerifyCommand creates the verify command
func NewVerifyCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	vo := &verifyOptions{format: formatConsole}

	cmd := &cobra.Command{
		Use:   "verify [version...]",
		Short: "Check installed binaries against the published checksums",
		Long: `Recompute the checksum of installed binaries and compare it with the
release index. Damaged binaries are reinstalled unless --no-repair is given.
Without arguments every installed version is checked.

Examples:
  gosolc verify
  gosolc verify 0.8.24 --no-repair
  gosolc verify --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			versions, err := parseVersions(args)
			if err != nil {
				return err
			}
			if err := checkFormat(console, vo.format); err != nil {
				return err
			}
			return run(cmd.Context(), console, opts, func(ctx context.Context, rt *runtime) error {
				return runVerify(ctx, rt, versions, vo)
			})
		},
	}

	cmd.Flags().BoolVar(&vo.noRepair, "no-repair", false, "Report damaged binaries without reinstalling them")
	cmd.Flags().StringVar(&vo.format, "format", formatConsole, "Output format: console or json")

	return cmd
}

func runVerify(ctx context.Context, rt *runtime, versions []version.Version, vo *verifyOptions) error {
	start := time.Now()

	cat, err := rt.catalog(ctx, true)
	if err != nil {
		return err
	}

	results := cat.Verify(ctx, versions, catalog.FileChecksummer{})

	repaired := map[version.Version]bool{}
	if !vo.noRepair {
		res := rt.installer(false).Repair(ctx, results)
		for _, v := range res.Installed {
			repaired[v] = true
		}
		for _, f := range res.Failed {
			Report(rt.console, f.Err)
		}
	}

	ordered := make([]version.Version, 0, len(results))
	for v := range results {
		ordered = append(ordered, v)
	}
	version.Sort(ordered)

	failed := false
	out := output.NewVerifyOutput(start)
	for _, v := range ordered {
		r := results[v]
		entry := output.VerifyResult{
			Version:  v.String(),
			Status:   string(r.Status),
			Expected: r.Expected.SHA256,
			Actual:   r.Actual.SHA256,
			Repaired: repaired[v],
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		if (r.Status == catalog.VerifyChecksumMismatch && !entry.Repaired) || r.Status == catalog.VerifyMissing {
			failed = true
		}
		out.Results = append(out.Results, entry)

		if !strings.EqualFold(vo.format, formatJSON) {
			printVerification(rt.console, r, entry.Repaired)
		}
	}

	if strings.EqualFold(vo.format, formatJSON) {
		out.ElapsedMs = output.MeasureElapsed(start)
		if err := rt.console.WriteJSON(out); err != nil {
			return err
		}
	} else if len(ordered) == 0 {
		rt.console.Info("No versions installed.")
	}

	if failed {
		return errSilent
	}
	return nil
}

func printVerification(console *output.Console, r catalog.Verification, repaired bool) {
	switch r.Status {
	case catalog.VerifyOK:
		console.Success("solc %s: ok", r.Version)
	case catalog.VerifyUnknown:
		console.Warning("solc %s: no published checksum to compare", r.Version)
	case catalog.VerifyMissing:
		console.Error("solc %s is not installed", r.Version)
	case catalog.VerifyChecksumMismatch:
		if repaired {
			console.Success("solc %s: checksum mismatch, reinstalled", r.Version)
			return
		}
		if r.Err != nil {
			console.Error("solc %s: %v", r.Version, r.Err)
			return
		}
		console.Error("%v", r.Mismatch())
	}
}
