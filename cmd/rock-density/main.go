package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"rock-density/internal/batch"
	"rock-density/internal/logger"
	"rock-density/internal/pipeline"
	"rock-density/internal/shutdown"

	"github.com/rs/zerolog"
)

const appName = "rock-density"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code: 0 on success, 1 on a processing failure
// and 2 on bad usage.
func run(args []string, stdout, stderr io.Writer) int {
	fs, o := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// Batch workers log concurrently.
	log := logger.NewZerolog(zerolog.ConsoleWriter{Out: zerolog.SyncWriter(stderr)}, logger.LevelFromEnv())

	cfg, err := buildConfig(fs, o)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 2
	}

	pl, err := pipeline.New(cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 2
	}

	mgr := shutdown.NewManager(context.Background(), log)
	mgr.Register("stage timings", func() {
		for _, op := range pl.Tracker().Operations() {
			log.Debug("Timing", "stage average", map[string]interface{}{
				"stage":   op,
				"runs":    len(pl.Tracker().GetTimings(op)),
				"average": pl.Tracker().GetAverageTime(op).String(),
			})
		}
	})
	mgr.Listen()
	defer mgr.Shutdown()

	if o.dir != "" {
		if fs.NArg() > 0 {
			fmt.Fprintf(stderr, "%s: -dir does not take positional arguments\n", appName)
			return 2
		}
		return runBatch(mgr.Context(), pl, o, stdout, stderr, log)
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	return runSingle(mgr.Context(), pl, fs.Arg(0), o, stdout, stderr, log)
}

func runSingle(ctx context.Context, pl *pipeline.Pipeline, path string, o *options, stdout, stderr io.Writer, log logger.Logger) int {
	result, err := pl.ProcessFile(ctx, path)
	if err != nil {
		log.Error("CLI", err, map[string]interface{}{"path": path})
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}

	fmt.Fprintf(stdout, "rock fragment density: %s\n", result.Percent())

	if o.maskOut != "" {
		if err := pipeline.SaveMask(o.maskOut, result.Rock); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
			return 1
		}
	}

	if o.debugMasks {
		if err := pipeline.SaveTierMasks(path, result); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
			return 1
		}
	}

	if o.reference != "" {
		ref, err := pipeline.LoadMask(o.reference)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
			return 1
		}
		m, err := pipeline.CompareMasks(result.Rock, ref)
		if err != nil {
			fmt.Fprintf(stderr, "%s: reference %s: %v\n", appName, o.reference, err)
			return 1
		}
		fmt.Fprintf(stdout, "IoU: %.4f\nDice: %.4f\nmisclassification: %.4f\nprecision: %.4f\nrecall: %.4f\n",
			m.IoU, m.DiceCoefficient, m.MisclassificationError, m.Precision, m.Recall)
	}

	return 0
}

func runBatch(ctx context.Context, pl *pipeline.Pipeline, o *options, stdout, stderr io.Writer, log logger.Logger) int {
	files, err := batch.Walk(o.dir)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}

	log.Info("CLI", "batch started", map[string]interface{}{
		"dir":    o.dir,
		"files":  len(files),
		"policy": pl.Policy().Name(),
	})

	runner := batch.NewRunner(pl, batch.Options{
		Workers:    pl.Config().Workers,
		SaveMasks:  o.saveMasks,
		DebugMasks: o.debugMasks,
	}, log)

	items, runErr := runner.Run(ctx, files)
	if err := batch.WriteReport(stdout, items); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "%s: batch interrupted: %v\n", appName, runErr)
		return 1
	}
	return 0
}
