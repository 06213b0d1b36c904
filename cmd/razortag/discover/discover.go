package discover

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/pipeline"
	"github.com/walteh/razortag/pkg/project"
	"go.uber.org/multierr"
)

type Handler struct {
	flags     *project.Flags
	fs        afero.Fs
	fromCache string
	verbose   bool
}

func NewDiscoverCommand(flags *project.Flags, fs afero.Fs) *cobra.Command {
	me := &Handler{flags: flags, fs: fs}

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "list the tag helpers visible to the configured packages",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().StringVar(&me.fromCache, "from-cache", "", "print the collection cached under this checksum instead of compiling")
	cmd.Flags().BoolVarP(&me.verbose, "verbose", "v", false, "print bound attributes and skipped members")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, w io.Writer) error {
	p, err := me.flags.Open(ctx, me.fs)
	if err != nil {
		return err
	}

	snap, err := p.Snapshot(ctx, p.Engine(), me.fromCache)
	if snap == nil {
		return err
	}
	for _, buildErr := range multierr.Errors(err) {
		zerolog.Ctx(ctx).Warn().Err(buildErr).Msg("descriptor skipped")
	}

	Print(w, snap, me.verbose)
	return err
}

var (
	faint   = color.New(color.Faint)
	bold    = color.New(color.Bold)
	kindCol = color.New(color.FgCyan)
	warn    = color.New(color.FgYellow)
)

// Print writes one line per descriptor of snap, followed by a summary line.
func Print(w io.Writer, snap *pipeline.Snapshot, verbose bool) {
	res := snap.Result
	merged := res.Merged

	for _, d := range merged.All() {
		fmt.Fprintf(w, "%-22s %-40s %s\n", kindCol.Sprint(d.Kind), bold.Sprint(d.DisplayName), faint.Sprint(ruleSummary(d)))
		if !verbose {
			continue
		}
		for _, a := range d.BoundAttributes {
			fmt.Fprintf(w, "    %s %s\n", a.DisplayName, faint.Sprint(attributeSummary(a)))
		}
	}

	if verbose {
		for _, s := range res.Skipped {
			fmt.Fprintf(w, "%s %s.%s (%s): %s\n", warn.Sprint("skipped"), s.Type, s.Attribute, s.Producer, s.Reason)
		}
	}

	fmt.Fprintf(w, "%s %d descriptors (%d compilation, %d references, %d skipped)\n",
		bold.Sprint(snap.Checksum().Short()), merged.Count(), res.Compilation.Count(), res.References.Count(), len(res.Skipped))
}

func ruleSummary(d *descriptor.TagHelperDescriptor) string {
	rules := make([]string, 0, len(d.TagMatchingRules))
	for _, r := range d.TagMatchingRules {
		var b strings.Builder
		if r.ParentTag != "" {
			b.WriteString(r.ParentTag)
			b.WriteString(" > ")
		}
		b.WriteString("<")
		b.WriteString(r.TagName)
		for _, a := range r.Attributes {
			b.WriteString(" ")
			b.WriteString(a.DisplayName)
		}
		if r.TagStructure == descriptor.TagStructureWithoutEndTag {
			b.WriteString(" /")
		}
		b.WriteString(">")
		rules = append(rules, b.String())
	}
	return strings.Join(rules, " | ")
}

func attributeSummary(a *descriptor.BoundAttributeDescriptor) string {
	var parts []string
	if a.IndexerNamePrefix != "" {
		parts = append(parts, "indexer "+a.IndexerNamePrefix+"*")
	}
	for _, p := range a.Parameters {
		parts = append(parts, ":"+p.Name)
	}
	if a.IsEditorRequired {
		parts = append(parts, "required")
	}
	return strings.Join(parts, " ")
}
