package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/museum/pkg/io"
	"github.com/matzehuels/museum/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string
	formats    string
	noCache    bool
	background string
	embed      bool
	scale      float64
	title      string
}

// renderCommand creates the render command for re-rendering a saved museum.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [museum.json]",
		Short: "Render a saved museum to other formats",
		Long: `Render a museum document written by 'museum build -f json'.

The placements are taken from the document as-is, so the wall looks the
same as the original build. No Spotify credential is needed unless the
output embeds artwork.`,
		Example: `  museum render museum.json -f png
  museum render museum.json -f svg,share --title "My 2026" -o wall`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple formats)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf, share, dot, constellation")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the cache")
	cmd.Flags().StringVar(&opts.background, "background", "", "background colour, e.g. #121212")
	cmd.Flags().BoolVar(&opts.embed, "embed", false, "embed artwork in SVG output")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().StringVar(&opts.title, "title", "", "share card title")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	m, err := pkgio.ImportFile(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded museum: %d placements on %.0fx%.0f", len(m.Placements), m.Width, m.Height)

	popts := pipeline.Options{
		Formats:    parseFormats(opts.formats),
		Background: opts.background,
		Embed:      opts.embed,
		Scale:      opts.scale,
		Title:      opts.title,
		Logger:     logger,
	}
	if err := popts.ValidateForRender(); err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input))
		if len(popts.Formats) == 1 {
			output += "." + pipeline.Extension(popts.Formats[0])
		}
	}
	paths, err := outputPaths(output, popts.Formats)
	if err != nil {
		return err
	}
	for f, p := range paths {
		if p == input {
			return fmt.Errorf("refusing to overwrite input %s with %s output", input, f)
		}
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, m, popts)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Rendered %d format(s)", len(artifacts))
	if hit {
		msg += " from cache"
	}
	prog.done(msg)

	return writeArtifacts(m, artifacts, popts.Formats, paths)
}
