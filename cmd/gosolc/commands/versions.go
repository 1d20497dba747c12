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

type versionsOptions struct {
	installed bool
	all       bool
	format    string
}

// NewVersionsCommand creates the versions command
func NewVersionsCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	vo := &versionsOptions{format: formatConsole}

	cmd := &cobra.Command{
		Use:     "versions",
		Aliases: []string{"ls"},
		Short:   "List installed or available compiler versions",
		Long: `List compiler versions. By default only installed versions are shown and
the selected one is marked. With --all every release published for this
platform is listed.

Examples:
  gosolc versions
  gosolc versions --all --refresh
  gosolc versions --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(console, vo.format); err != nil {
				return err
			}
			return run(cmd.Context(), console, opts, func(ctx context.Context, rt *runtime) error {
				return runVersions(ctx, rt, vo)
			})
		},
	}

	cmd.Flags().BoolVar(&vo.installed, "installed", false, "List installed versions only (default)")
	cmd.Flags().BoolVar(&vo.all, "all", false, "List every release for this platform")
	cmd.Flags().StringVar(&vo.format, "format", formatConsole, "Output format: console or json")
	cmd.MarkFlagsMutuallyExclusive("installed", "all")

	return cmd
}

func runVersions(ctx context.Context, rt *runtime, vo *versionsOptions) error {
	start := time.Now()

	cat, err := rt.catalog(ctx, vo.all)
	if err != nil {
		return err
	}

	listed := cat.InstalledVersions()
	if vo.all {
		listed = cat.Candidates()
	}
	sel, hasSel := cat.CurrentVersion()

	if strings.EqualFold(vo.format, formatJSON) {
		out := output.NewVersionsOutput(cat.Platform.String(), start)
		if cat.Latest != nil {
			out.Latest = cat.Latest.String()
		}
		if hasSel {
			out.Current = selectionOutput(cat, sel)
		}
		for _, v := range listed {
			out.Versions = append(out.Versions, versionEntry(cat, v))
		}
		out.ElapsedMs = output.MeasureElapsed(start)
		return rt.console.WriteJSON(out)
	}

	if len(listed) == 0 {
		if vo.all {
			rt.console.Info("No releases known; run `gosolc refresh`.")
		} else {
			rt.console.Info("No versions installed; run `gosolc install latest`.")
		}
		return nil
	}

	for _, v := range listed {
		rt.console.Println(versionLine(cat, v, sel, hasSel, vo.all))
	}
	return nil
}

func versionEntry(cat *catalog.Catalog, v version.Version) output.VersionEntry {
	e := output.VersionEntry{
		Version:   v.String(),
		Available: cat.IsAvailable(v),
	}
	if inst, ok := cat.Installed[v]; ok {
		e.Installed = true
		e.Path = inst.Path
	}
	return e
}

func versionLine(cat *catalog.Catalog, v version.Version, sel catalog.Selection, hasSel, all bool) string {
	var sb strings.Builder
	current := hasSel && sel.Version == v
	if current {
		sb.WriteString("* ")
	} else {
		sb.WriteString("  ")
	}
	sb.WriteString(v.String())

	var notes []string
	if all && cat.IsInstalled(v) {
		notes = append(notes, "installed")
	}
	if !cat.IsAvailable(v) && len(cat.Available) > 0 {
		notes = append(notes, "not in release index")
	}
	if current {
		notes = append(notes, string(sel.Scope)+": "+sel.Source)
	}
	if len(notes) > 0 {
		sb.WriteString("  (" + strings.Join(notes, ", ") + ")")
	}
	return sb.String()
}
