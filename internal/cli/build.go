package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	token      string
	output     string
	formats    string
	noCache    bool
	timeoutSec int
	pipeline   pipeline.Options

	// changed reports whether a flag was set on the command line.
	changed func(name string) bool
}

// buildCommand creates the build command: fetch, lay out and render.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a museum from your Spotify listening history",
		Long: `Fetch your top artists, tracks and albums, arrange their artwork on a
canvas and write the result in one or more formats.

A failed fetch does not stop the build: the museum is hung with whatever
categories could be fetched and a warning names the missing ones.`,
		Example: `  museum build
  museum build --seed 42 -f svg,png -o wall
  museum build --time-range short --filler 0.5 --width 1920 --height 1080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.changed = cmd.Flags().Changed
			return c.runBuild(cmd.Context(), &opts)
		},
	}

	p := &opts.pipeline
	cmd.Flags().StringVar(&opts.token, "token", "", "Spotify access token (default: $SPOTIFY_TOKEN or the stored login)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple formats)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json, png, pdf, share, dot, constellation")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the cache")
	cmd.Flags().BoolVar(&p.Refresh, "refresh", false, "ignore cached upstream responses")
	cmd.Flags().IntVar(&opts.timeoutSec, "timeout", 120, "overall timeout in seconds")

	cmd.Flags().StringVar(&p.TimeRange, "time-range", "", "listening window: short, medium (default), long")
	cmd.Flags().IntVar(&p.ArtistLimit, "artists", 0, "number of top artists (default 30, max 50)")
	cmd.Flags().IntVar(&p.TrackLimit, "tracks", 0, "number of top tracks (default 30, max 50)")
	cmd.Flags().IntVar(&p.AlbumLimit, "albums", 0, "number of top albums (default 20, max 50)")
	cmd.Flags().BoolVar(&p.WithProfile, "sign", false, "sign the museum with your display name")

	cmd.Flags().Float64Var(&p.Width, "width", 0, "canvas width (default 800 or [layout] width)")
	cmd.Flags().Float64Var(&p.Height, "height", 0, "canvas height (default 600 or [layout] height)")
	cmd.Flags().Uint64Var(&p.Seed, "seed", 0, "random seed (0 picks one and reports it)")
	cmd.Flags().Float64SliceVar(&p.Sizes, "sizes", nil, "tile sizes (default 80,100,120,150)")
	cmd.Flags().Float64Var(&p.MaxRotation, "max-rotation", 0, "maximum tile rotation in degrees (default 15, max 20, -1 for none)")
	cmd.Flags().Float64Var(&p.MinSeparation, "min-separation", 0, "minimum distance between tile centres (default: half a grid cell)")
	cmd.Flags().Float64Var(&p.FillerDensity, "filler", 0, "extra duplicate tiles per item, e.g. 0.5 adds half as many")
	cmd.Flags().IntVar(&p.MaxItems, "max-items", 0, "cap on the number of tiles")

	cmd.Flags().StringVar(&p.Background, "background", "", "background colour, e.g. #121212")
	cmd.Flags().BoolVar(&p.Embed, "embed", false, "embed artwork in SVG output")
	cmd.Flags().Float64Var(&p.Scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().StringVar(&p.Title, "title", "", "share card title")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, opts *buildOpts) error {
	logger := loggerFromContext(ctx)
	if opts.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.timeoutSec)*time.Second)
		defer cancel()
	}

	credential, err := c.credential(ctx, opts.token)
	if err != nil {
		return err
	}

	popts := c.mergeOptions(opts)
	if err := errors.ValidateCanvasSize(popts.Width, popts.Height); err != nil {
		return err
	}
	popts.Formats = parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(popts.Formats); err != nil {
		return err
	}
	paths, err := outputPaths(opts.output, popts.Formats)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Fetching your top artists, tracks and albums...")
	spinner.Start()
	result, err := runner.Execute(ctx, credential, popts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	m := result.Museum
	printSuccess("Hung %d tiles on a %.0fx%.0f wall", len(m.Placements), m.Width, m.Height)
	printStats(m, result.CacheInfo)
	printFailures(result)
	if result.Stats.Fallbacks > 0 {
		logger.Debug("tiles placed without separation", "count", result.Stats.Fallbacks)
	}

	if err := writeArtifacts(m, result.Artifacts, popts.Formats, paths); err != nil {
		return err
	}
	printDetail("seed %d", m.Seed)
	if doc, ok := paths[pipeline.FormatJSON]; ok && doc != stdoutPath {
		printNextStep("Re-render this wall", fmt.Sprintf("museum render %s -f png", doc))
	}
	return nil
}

// mergeOptions layers the command flags over the config file defaults.
// Layout flags only override the config when given on the command line.
func (c *CLI) mergeOptions(opts *buildOpts) pipeline.Options {
	merged := c.defaultOptions()
	f := opts.pipeline
	changed := opts.changed
	if changed == nil {
		changed = func(string) bool { return false }
	}

	merged.Refresh = f.Refresh
	merged.WithProfile = f.WithProfile
	merged.ArtistLimit, merged.TrackLimit, merged.AlbumLimit = f.ArtistLimit, f.TrackLimit, f.AlbumLimit
	merged.Seed = f.Seed
	merged.MinSeparation = f.MinSeparation
	if changed("time-range") {
		merged.TimeRange = f.TimeRange
	}
	if changed("width") {
		merged.Width = f.Width
	}
	if changed("height") {
		merged.Height = f.Height
	}
	if changed("sizes") {
		merged.Sizes = f.Sizes
	}
	if changed("max-rotation") {
		merged.MaxRotation = f.MaxRotation
	}
	if changed("filler") {
		merged.FillerDensity = f.FillerDensity
	}
	if changed("max-items") {
		merged.MaxItems = f.MaxItems
	}

	merged.Background = f.Background
	merged.Embed = f.Embed
	merged.Scale = f.Scale
	merged.Title = f.Title
	return merged
}
