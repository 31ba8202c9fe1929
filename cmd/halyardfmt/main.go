// Command halyardfmt is a small front-end over the halyard core: it
// loads one or more YAML documents and re-dumps them, optionally in
// canonical form, printing a debug tree or a diff against the input
// along the way.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/kr/pretty"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/halyard-yaml/halyard/internal/resolver"

	"github.com/halyard-yaml/halyard"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		canonical bool
		indent    int
		width     int
		debug     bool
		diff      bool
	)

	cmd := &cobra.Command{
		Use:   "halyardfmt [file]",
		Short: "Reformat a YAML document through the halyard core",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args)
			if err != nil {
				return err
			}

			loader := halyard.NewLoaderBytes(input)
			docs, err := loader.LoadAll()
			if err != nil {
				return err
			}

			if debug {
				for _, d := range docs {
					pretty.Fprintf(cmd.ErrOrStderr(), "%# v\n", d)
				}
			}

			var out bytes.Buffer
			dumper := halyard.NewDumper(&out,
				halyard.WithCanonicalDump(canonical),
				halyard.WithDumperIndent(indent),
				halyard.WithDumperWidth(width),
			)
			if err := dumper.DumpAll(docs); err != nil {
				return err
			}

			if diff {
				d := difflib.UnifiedDiff{
					A:        difflib.SplitLines(string(input)),
					B:        difflib.SplitLines(out.String()),
					FromFile: "input",
					ToFile:   "formatted",
					Context:  3,
				}
				text, err := difflib.GetUnifiedDiffString(d)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}

			_, err = cmd.OutOrStdout().Write(out.Bytes())
			return err
		},
	}

	cmd.Flags().BoolVar(&canonical, "canonical", false, "dump in canonical form")
	cmd.Flags().IntVar(&indent, "indent", 2, "block indentation width (2-9)")
	cmd.Flags().IntVar(&width, "width", 80, "preferred line width")
	cmd.Flags().BoolVar(&debug, "debug", false, "pretty-print the composed node tree to stderr")
	cmd.Flags().BoolVar(&diff, "diff", false, "print a unified diff instead of the formatted document")

	cmd.AddCommand(newTagsCmd())
	return cmd
}

// newTagsCmd lists the core schema's well-known tags, mostly useful for
// verifying a custom Resolver's AddImplicitResolver ordering.
func newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the core schema's well-known tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, tag := range []string{
				resolver.NullTag, resolver.BoolTag, resolver.IntTag, resolver.FloatTag,
				resolver.BinaryTag, resolver.TimestampTag, resolver.StrTag, resolver.SeqTag,
				resolver.MapTag, resolver.OMapTag, resolver.PairsTag, resolver.SetTag,
				resolver.MergeTag, resolver.ValueTag,
			} {
				fmt.Fprintln(cmd.OutOrStdout(), resolver.ShortTag(tag), tag)
			}
			return nil
		},
	}
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}
