package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/suykerbuyk/podseg/internal/archive"
	"github.com/suykerbuyk/podseg/internal/check"
	"github.com/suykerbuyk/podseg/internal/config"
	"github.com/suykerbuyk/podseg/internal/enrichment"
	"github.com/suykerbuyk/podseg/internal/fsutil"
	"github.com/suykerbuyk/podseg/internal/help"
	"github.com/suykerbuyk/podseg/internal/logging"
	"github.com/suykerbuyk/podseg/internal/media"
	"github.com/suykerbuyk/podseg/internal/process"
	"github.com/suykerbuyk/podseg/internal/render"
	"github.com/suykerbuyk/podseg/internal/sanitize"
	"github.com/suykerbuyk/podseg/internal/stats"
	"github.com/suykerbuyk/podseg/internal/store"
	"github.com/suykerbuyk/podseg/internal/transcribe"
	"github.com/suykerbuyk/podseg/internal/transcript"
	"github.com/suykerbuyk/podseg/internal/watch"
	"github.com/suykerbuyk/podseg/internal/wer"
)

func runInit(_ context.Context, args []string) error {
	fs := newFlagSet(help.CmdInit)
	stateDir := fs.String("state-dir", config.DefaultConfig().StateDir, "state directory")
	args, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(help.CmdInit, args, 0, 0); err != nil {
		return err
	}

	dir := *stateDir
	if !strings.HasPrefix(dir, "~") {
		if dir, err = filepath.Abs(dir); err != nil {
			return err
		}
	}
	path, action, err := config.WriteDefault(dir)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", action, config.CompressHome(path))
	return nil
}

func newMedia(cfg config.Config, log zerolog.Logger) *media.Processor {
	return media.New(media.Options{
		FFmpeg:           cfg.Audio.FFmpeg,
		SampleRate:       cfg.Audio.SampleRate,
		Channels:         cfg.Audio.Channels,
		NoiseReductionDB: cfg.Audio.NoiseReductionDB,
		HighpassHz:       cfg.Audio.HighpassHz,
		Normalize:        cfg.Audio.Normalize,
	}, process.Exec, logging.Component(log, "media"))
}

func runConvert(ctx context.Context, args []string) error {
	fs := newFlagSet(help.CmdConvert)
	out := fs.String("o", "", "output path")
	args, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(help.CmdConvert, args, 1, 1); err != nil {
		return err
	}
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	dest := *out
	if dest == "" {
		dest = media.ConvertedPath(args[0], cfg.Audio.WorkDir)
	}
	if err := newMedia(cfg, log).Convert(ctx, args[0], dest); err != nil {
		return err
	}
	fmt.Printf("converted %s\n", dest)
	return nil
}

func runClean(ctx context.Context, args []string) error {
	fs := newFlagSet(help.CmdClean)
	out := fs.String("o", "", "output path")
	args, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(help.CmdClean, args, 1, 1); err != nil {
		return err
	}
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	dest := *out
	if dest == "" {
		dest = media.CleanedPath(args[0], cfg.Audio.WorkDir)
	}
	if err := newMedia(cfg, log).Clean(ctx, args[0], dest); err != nil {
		return err
	}
	fmt.Printf("cleaned %s\n", dest)
	return nil
}

func runTranscribe(ctx context.Context, args []string) error {
	fs := newFlagSet(help.CmdTranscribe)
	out := fs.String("o", "", "output path")
	backend := fs.String("backend", "", "transcription backend")
	model := fs.String("model", "", "speech model")
	args, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(help.CmdTranscribe, args, 1, 1); err != nil {
		return err
	}
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if *backend != "" {
		cfg.Transcription.Backend = *backend
	}
	if *model != "" {
		cfg.Transcription.Model = *model
	}

	b, err := transcribe.New(cfg.Transcription, process.Exec, logging.Component(log, "transcribe"))
	if err != nil {
		return err
	}
	log.Info().Str("backend", b.Name()).Str("audio", args[0]).Msg("transcribing")
	res, err := b.Transcribe(ctx, args[0])
	if err != nil {
		return err
	}

	dest := *out
	if dest == "" {
		dest = transcribe.OutputPath(args[0])
	}
	n, err := transcribe.WriteFile(dest, res, sanitize.NewFillers(cfg.Transcription.Fillers))
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d lines)\n", dest, n)
	return nil
}

func runWER(_ context.Context, args []string) error {
	fs := newFlagSet(help.CmdWER)
	keep := fs.Bool("keep-timestamps", false, "score timestamps as words")
	args, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(help.CmdWER, args, 2, 2); err != nil {
		return err
	}

	res, err := wer.CompareFiles(args[0], args[1], !*keep)
	if err != nil {
		return err
	}
	return wer.Format(os.Stdout, res)
}

func runSummarize(ctx context.Context, args []string) error {
	fs := newFlagSet(help.CmdSummarize)
	out := fs.String("o", "", "summary path")
	args, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(help.CmdSummarize, args, 1, 1); err != nil {
		return err
	}
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	policy, err := cfg.Segment.Policy()
	if err != nil {
		return err
	}

	segs, err := transcript.ParseFile(args[0], policy)
	if err != nil {
		return err
	}
	res, err := enrichment.Summarize(ctx, cfg.Enrichment, enrichment.PromptInput{
		Source: filepath.Base(args[0]),
		Text:   transcript.Text(segs),
	}, logging.Component(log, "enrichment"))
	if err != nil {
		return err
	}

	summary := strings.TrimSpace(res.Summary) + "\n"
	if *out == "" {
		fmt.Print(summary)
		return nil
	}
	if err := fsutil.WriteFile(*out, []byte(summary), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", *out)
	return nil
}

func runWatch(ctx context.Context, args []string) error {
	fs := newFlagSet(help.CmdWatch)
	var flags segmentFlags
	flags.register(fs, false)
	args, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(help.CmdWatch, args, 1, 1); err != nil {
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
	p, err := newPipeline(ctx, cfg, format, log)
	if err != nil {
		return err
	}
	defer p.Close()

	w := watch.New(args[0], func(ctx context.Context, path string) error {
		run, err := p.Run(ctx, path, "")
		if isGuardError(err) {
			log.Warn().Err(err).Str("input", path).Msg("transcript too short, skipped")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d topics -> %s\n", filepath.Base(path), run.Topics, run.Output)
		return nil
	}, log)

	log.Info().Str("dir", args[0]).Msg("watching for transcripts")
	return w.Run(ctx)
}

func runHistory(ctx context.Context, args []string) error {
	fs := newFlagSet(help.CmdHistory)
	n := fs.Int("n", 10, "recent runs to list")
	args, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(help.CmdHistory, args, 0, 0); err != nil {
		return err
	}
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.HistoryDB())
	if err != nil {
		return err
	}
	defer st.Close()

	all, err := st.Runs(ctx, 0)
	if err != nil {
		return err
	}
	recent := all
	if *n >= 0 && len(recent) > *n {
		recent = recent[:*n]
	}
	fmt.Print(stats.Format(stats.Compute(all), recent))
	return nil
}

func runArchive(_ context.Context, args []string) error {
	fs := newFlagSet(help.CmdArchive)
	dirFlag := fs.String("dir", "", "archive directory")
	args, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(help.CmdArchive, args, 1, -1); err != nil {
		return err
	}
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	dir := *dirFlag
	if dir == "" {
		dir = cfg.ArchiveDir()
	}

	var failed int
	for _, path := range args {
		if archive.IsArchived(path, dir) {
			fmt.Printf("skipped %s (already archived)\n", path)
			continue
		}
		dest, err := archive.Archive(path, dir)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("archive failed")
			failed++
			continue
		}
		fmt.Printf("archived %s\n", config.CompressHome(dest))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files not archived", failed, len(args))
	}
	return nil
}

func runCheck(ctx context.Context, args []string) error {
	fs := newFlagSet(help.CmdCheck)
	args, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs(help.CmdCheck, args, 0, 0); err != nil {
		return err
	}

	var report check.Report
	cfg, err := config.Load()
	if err != nil {
		report.Results = append(report.Results, check.Result{Name: "config", Status: check.Fail, Detail: err.Error()})
	} else {
		report = check.Run(ctx, cfg)
	}
	fmt.Print(report.Format())
	if report.HasFailures() {
		return errSilent
	}
	return nil
}
