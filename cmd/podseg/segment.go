package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/suykerbuyk/podseg/internal/archive"
	"github.com/suykerbuyk/podseg/internal/config"
	"github.com/suykerbuyk/podseg/internal/discover"
	"github.com/suykerbuyk/podseg/internal/embed"
	"github.com/suykerbuyk/podseg/internal/enrichment"
	"github.com/suykerbuyk/podseg/internal/fsutil"
	"github.com/suykerbuyk/podseg/internal/help"
	"github.com/suykerbuyk/podseg/internal/logging"
	"github.com/suykerbuyk/podseg/internal/render"
	"github.com/suykerbuyk/podseg/internal/segment"
	"github.com/suykerbuyk/podseg/internal/store"
	"github.com/suykerbuyk/podseg/internal/transcript"
)

// segmentFlags are the overrides shared by segment and watch.
type segmentFlags struct {
	format      string
	provider    string
	window      int
	kernel      int
	percentile  float64
	minTopic    int
	minSegments int
	strict      bool
	noCache     bool
	archive     bool
}

func (f *segmentFlags) register(fs *flag.FlagSet, full bool) {
	fs.StringVar(&f.format, "format", string(render.Text), "report format: text, markdown or json")
	fs.StringVar(&f.provider, "provider", "", "embedding provider override")
	if !full {
		return
	}
	fs.IntVar(&f.window, "window", 0, "segments per embedding window")
	fs.IntVar(&f.kernel, "kernel", 0, "smoothing kernel size")
	fs.Float64Var(&f.percentile, "percentile", -1, "boundary threshold percentile")
	fs.IntVar(&f.minTopic, "min-topic", 0, "minimum segments between boundaries")
	fs.IntVar(&f.minSegments, "min-segments", 0, "minimum transcript length")
	fs.BoolVar(&f.strict, "strict", false, "fail on malformed lines")
	fs.BoolVar(&f.noCache, "no-cache", false, "bypass the embedding cache")
	fs.BoolVar(&f.archive, "archive", false, "archive the transcript afterwards")
}

// apply writes the overrides that were set into cfg.
func (f *segmentFlags) apply(cfg *config.Config) {
	if f.provider != "" {
		cfg.Embedding.Provider = f.provider
	}
	if f.window > 0 {
		cfg.Segment.WindowSize = f.window
	}
	if f.kernel > 0 {
		cfg.Segment.SmoothingKernel = f.kernel
	}
	if f.percentile >= 0 {
		cfg.Segment.Percentile = f.percentile
	}
	if f.minTopic > 0 {
		cfg.Segment.MinTopicSize = f.minTopic
	}
	if f.minSegments > 0 {
		cfg.Segment.MinSegments = f.minSegments
	}
	if f.strict {
		cfg.Segment.Malformed = "fail"
	}
	if f.noCache {
		cfg.Embedding.Cache = false
	}
	if f.archive {
		cfg.Archive.Compress = true
	}
}

func runSegment(ctx context.Context, args []string) error {
	fs := newFlagSet(help.CmdSegment)
	var flags segmentFlags
	flags.register(fs, true)
	out := fs.String("o", "", "report path")
	args, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(help.CmdSegment, args, 1, 1); err != nil {
		return err
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	flags.apply(&cfg)

	format, err := render.ParseFormat(flags.format)
	if err != nil {
		return &usageError{msg: err.Error()}
	}

	files, err := discover.Resolve(args[0])
	if err != nil {
		return err
	}
	if *out != "" && len(files) > 1 {
		return usageErrorf("-o cannot be used with %d transcripts", len(files))
	}

	p, err := newPipeline(ctx, cfg, format, log)
	if err != nil {
		return err
	}
	defer p.Close()

	failed := 0
	for _, f := range files {
		run, err := p.Run(ctx, f.Path, *out)
		if err != nil {
			if len(files) == 1 {
				return fmt.Errorf("%s: %w", f.Path, err)
			}
			log.Error().Err(err).Str("input", f.Path).Msg("segment failed")
			failed++
			continue
		}
		fmt.Printf("%s: %d topics from %d segments -> %s\n",
			filepath.Base(f.Path), run.Topics, run.Segments, run.Output)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d transcripts failed", failed, len(files))
	}
	return nil
}

// pipeline carries the collaborators of one or more segmentation runs.
type pipeline struct {
	cfg       config.Config
	format    render.Format
	policy    transcript.MalformedPolicy
	provider  embed.Provider
	segmenter *segment.Segmenter
	store     *store.Store
	log       zerolog.Logger
}

func newPipeline(ctx context.Context, cfg config.Config, format render.Format, log zerolog.Logger) (*pipeline, error) {
	policy, err := cfg.Segment.Policy()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.HistoryDB())
	if err != nil {
		return nil, err
	}

	provider, err := embed.New(cfg.Embedding, log)
	if err != nil {
		st.Close()
		return nil, err
	}
	if cfg.Embedding.Cache {
		provider = embed.NewCached(provider, st, logging.Component(log, "cache"))
	}

	seg, err := segment.New(cfg.Segment.Options(), provider, log)
	if err != nil {
		provider.Close()
		st.Close()
		return nil, err
	}

	log.Debug().
		Str("provider", provider.Name()).
		Str("format", string(format)).
		Str("policy", policy.String()).
		Msg("pipeline ready")

	return &pipeline{
		cfg:       cfg,
		format:    format,
		policy:    policy,
		provider:  provider,
		segmenter: seg,
		store:     st,
		log:       log,
	}, nil
}

func (p *pipeline) Close() {
	if err := p.provider.Close(); err != nil {
		p.log.Warn().Err(err).Msg("close embedding provider")
	}
	if err := p.store.Close(); err != nil {
		p.log.Warn().Err(err).Msg("close history")
	}
}

// Run segments one transcript and writes its report to out, or next to the
// input when out is empty. Nothing is written unless every step succeeds.
func (p *pipeline) Run(ctx context.Context, path, out string) (store.Run, error) {
	start := time.Now()

	segs, err := transcript.ParseFile(path, p.policy)
	if err != nil {
		return store.Run{}, err
	}

	res, err := p.segmenter.Segment(ctx, segs)
	if err != nil {
		return store.Run{}, err
	}

	stats := transcript.ComputeStats(segs)
	report := render.Report{
		Source:   path,
		Provider: p.provider.Name(),
		Segments: len(segs),
		Config:   p.segmenter.Config(),
		Result:   res,
		Stats:    &stats,
	}
	if p.format != render.Text {
		report.Summary = p.summarize(ctx, path, segs, res.Topics)
	}

	if out == "" {
		out = render.OutputPath(path, p.format)
	}
	err = fsutil.Write(out, 0o644, func(w io.Writer) error {
		return render.Render(w, p.format, report)
	})
	if err != nil {
		return store.Run{}, fmt.Errorf("write report: %w", err)
	}

	run, err := p.store.RecordRun(ctx, store.Run{
		Input:      path,
		Output:     out,
		Segments:   len(segs),
		Topics:     len(res.Topics),
		Boundaries: res.Boundaries,
		Threshold:  res.Threshold,
		Provider:   p.provider.Name(),
		Duration:   time.Since(start),
	})
	if err != nil {
		p.log.Warn().Err(err).Msg("history not recorded")
	}

	p.log.Info().
		Str("input", filepath.Base(path)).
		Int("segments", len(segs)).
		Int("words", stats.Words).
		Str("first", stats.First).
		Str("last", stats.Last).
		Dur("span", stats.Span).
		Int("topics", len(res.Topics)).
		Float64("threshold", res.Threshold).
		Dur("took", run.Duration).
		Msg("segmented")

	if p.cfg.Archive.Compress {
		p.archive(path)
	}
	return run, nil
}

// summarize asks the enrichment endpoint for a summary. Failures only cost
// the summary.
func (p *pipeline) summarize(ctx context.Context, path string, segs []transcript.Segment, topics []segment.Topic) string {
	input := enrichment.PromptInput{
		Source: filepath.Base(path),
		Text:   transcript.Text(segs),
	}
	for _, t := range topics {
		input.Topics = append(input.Topics, enrichment.TopicOutline{
			Start:    t.StartTime(),
			End:      t.EndTime(),
			Segments: len(t.Segments),
		})
	}
	res, err := enrichment.Generate(ctx, p.cfg.Enrichment, input, p.log)
	if err != nil {
		p.log.Warn().Err(err).Msg("summary skipped")
		return ""
	}
	if res == nil {
		return ""
	}
	return res.Summary
}

func (p *pipeline) archive(path string) {
	dir := p.cfg.ArchiveDir()
	switch {
	case strings.HasSuffix(path, archive.Ext):
		return
	case archive.IsArchived(path, dir):
		p.log.Debug().Str("input", path).Msg("already archived")
		return
	}
	dest, err := archive.Archive(path, dir)
	if err != nil {
		p.log.Warn().Err(err).Str("input", path).Msg("archive failed")
		return
	}
	p.log.Info().Str("archive", config.CompressHome(dest)).Msg("archived")
}

// isGuardError reports whether err is one of the segmenter's input checks.
func isGuardError(err error) bool {
	var short *segment.InsufficientSegmentsError
	var data *segment.InsufficientDataError
	return errors.As(err, &short) || errors.As(err, &data)
}
