package match

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/razortag/pkg/binder"
	"github.com/walteh/razortag/pkg/diagnostic"
	"github.com/walteh/razortag/pkg/pipeline"
	"github.com/walteh/razortag/pkg/project"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

type Handler struct {
	flags      *project.Flags
	fs         afero.Fs
	fromCache  string
	attributes bool
	check      bool
	json       bool
}

func NewMatchCommand(flags *project.Flags, fs afero.Fs) *cobra.Command {
	me := &Handler{flags: flags, fs: fs}

	cmd := &cobra.Command{
		Use:   "match [glob...]",
		Short: "bind the tags of markup documents against the discovered tag helpers",
		Long:  "Documents are matched by the given doublestar globs, or by the config's documents list when none are given. Globs are relative to the project directory.",
	}

	cmd.Flags().StringVar(&me.fromCache, "from-cache", "", "match against the collection cached under this checksum instead of compiling")
	cmd.Flags().BoolVarP(&me.attributes, "attributes", "a", false, "classify each attribute of a bound tag")
	cmd.Flags().BoolVar(&me.check, "check", false, "report diagnostics instead of bindings; fails when any is an error")
	cmd.Flags().BoolVar(&me.json, "json", false, "with --check, print language server diagnostics as JSON")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), cmd.OutOrStdout(), args)
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, w io.Writer, patterns []string) error {
	p, err := me.flags.Open(ctx, me.fs)
	if err != nil {
		return err
	}

	docs, err := p.Documents(ctx, patterns...)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		zerolog.Ctx(ctx).Warn().Strs("patterns", patterns).Msg("no documents matched")
		return nil
	}

	e := p.Engine()
	snap, discoverErr := p.Snapshot(ctx, e, me.fromCache)
	if snap == nil {
		return discoverErr
	}
	for _, buildErr := range multierr.Errors(discoverErr) {
		zerolog.Ctx(ctx).Warn().Err(buildErr).Msg("descriptor skipped")
	}

	matches, err := e.MatchDocuments(ctx, snap, docs)
	if err != nil {
		return err
	}

	if me.check {
		if err := me.report(w, matches); err != nil {
			return err
		}
		return discoverErr
	}

	Print(w, matches, me.attributes)
	return discoverErr
}

func (me *Handler) report(w io.Writer, matches []pipeline.DocumentMatch) error {
	all := make([]*diagnostic.Diagnostics, 0, len(matches))
	errorCount := 0
	for _, m := range matches {
		ds := diagnostic.Check(m)
		errorCount += len(ds.Errors)
		all = append(all, ds)
	}

	if me.json {
		data, err := diagnostic.FormatLSP(all)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return errors.Errorf("writing diagnostics: %w", err)
		}
	} else {
		PrintDiagnostics(w, all)
	}

	if errorCount > 0 {
		return errors.Errorf("%w: %d in %d documents", ErrDiagnostics, errorCount, len(matches))
	}
	return nil
}

var ErrDiagnostics = errors.New("documents have errors")

var (
	pathCol = color.New(color.Bold)
	faint   = color.New(color.Faint)
	tagCol  = color.New(color.FgGreen)
	htmlCol = color.New(color.FgHiBlack)

	severityCol = map[diagnostic.Severity]*color.Color{
		diagnostic.SeverityError:   color.New(color.FgRed, color.Bold),
		diagnostic.SeverityWarning: color.New(color.FgYellow),
		diagnostic.SeverityHint:    color.New(color.FgBlue),
	}
)

// PrintDiagnostics writes one line per diagnostic, as path:line:col.
func PrintDiagnostics(w io.Writer, all []*diagnostic.Diagnostics) {
	for _, ds := range all {
		for _, d := range ds.All() {
			fmt.Fprintf(w, "%s:%s %s %s %s\n", pathCol.Sprint(ds.Path), d.Range.Start,
				severityCol[d.Severity].Sprint(d.Severity), d.Message, faint.Sprintf("[%s]", d.Code))
		}
	}
}

// Print writes each document with its bound tags, in document order.
func Print(w io.Writer, matches []pipeline.DocumentMatch, attributes bool) {
	for _, m := range matches {
		header := fmt.Sprintf("%s %s", pathCol.Sprint(m.Path), faint.Sprintf("%d/%d tags bound", len(m.Tags), m.TagCount))
		if m.Prefix != "" {
			header += faint.Sprintf(" prefix %q", m.Prefix)
		}
		fmt.Fprintln(w, header)

		for _, t := range m.Tags {
			names := make([]string, 0, len(t.Binding.Matches))
			for _, d := range t.Binding.Descriptors() {
				names = append(names, d.DisplayName)
			}
			fmt.Fprintf(w, "  %s %s %s\n", faint.Sprint(t.Range.Start), tagCol.Sprintf("<%s>", t.Tag.Name), strings.Join(names, ", "))

			if !attributes {
				continue
			}
			for _, c := range t.Binding.ClassifyAttributes() {
				fmt.Fprintf(w, "      %s\n", classification(c))
			}
		}
	}
}

func classification(c binder.AttributeClassification) string {
	if c.IsHTML() {
		return htmlCol.Sprintf("%s (html)", c.Attribute.Name)
	}
	target := c.Descriptor.DisplayName
	if c.Match.Attribute != nil {
		target += "." + c.Match.Attribute.Name
	}
	if c.Match.Parameter != nil {
		target += ":" + c.Match.Parameter.Name
	}
	return fmt.Sprintf("%s -> %s", c.Attribute.Name, target)
}
