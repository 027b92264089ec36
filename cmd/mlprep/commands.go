package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wdm0006/mlprep/pkg/clean"
	"github.com/wdm0006/mlprep/pkg/config"
	ds "github.com/wdm0006/mlprep/pkg/dataset"
	"github.com/wdm0006/mlprep/pkg/report"
	"github.com/wdm0006/mlprep/pkg/split"
)

func (a *app) cleanCmd() *cobra.Command {
	var jobPath string
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Run the job's cleaning stages and write the cleaned dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := config.Load(jobPath)
			if err != nil {
				return err
			}
			log := a.log.With(zap.String("run_id", uuid.NewString()))
			f, err := a.cleaned(cmd.Context(), log, job)
			if err != nil {
				return err
			}
			files, err := writeFrame(job.Output, "cleaned", f)
			if err != nil {
				return err
			}
			log.Info("wrote cleaned dataset", zap.Int("rows", f.Rows()), zap.Strings("files", files))
			return nil
		},
	}
	cmd.Flags().StringVarP(&jobPath, "config", "c", "", "job file (.json, .yaml or .toml)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func (a *app) splitCmd() *cobra.Command {
	var (
		in    config.Input
		out   config.Output
		s     config.Split
		ratio float64
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "split <input>",
		Short: "Split a dataset into stratified train and test sets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Path = args[0]
			s.Ratio, s.Seed = &ratio, &seed
			job := config.Job{Input: in, Output: out, Split: &s}
			if err := job.Validate(); err != nil {
				return err
			}
			log := a.log.With(zap.String("run_id", uuid.NewString()))
			f, err := readFrame(in)
			if err != nil {
				return err
			}
			return a.splitAndWrite(cmd.OutOrStdout(), log, job, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&in.Type, "input-type", config.TypeCSV, "input type (csv, parquet)")
	fl.BoolVar(&in.HasHeader, "header", true, "csv input has a header row")
	fl.StringVar(&in.Delimiter, "delimiter", "", "csv input delimiter (sniffed when empty)")
	fl.StringVarP(&out.Dir, "out", "o", "out", "output directory")
	fl.StringVar(&out.Type, "output-type", config.TypeCSV, "output type (csv, parquet)")
	fl.IntVar(&out.RowsPerPart, "rows-per-part", 0, "rows per csv part file, 0 for a single part")
	fl.StringVar(&s.Column, "column", "", "stratification column")
	fl.Float64Var(&ratio, "ratio", split.DefaultRatio, "fraction of each stratum sampled into train")
	fl.Int64Var(&seed, "seed", split.DefaultSeed, "sampling seed")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func (a *app) runCmd() *cobra.Command {
	var jobPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Clean a dataset and split it into train and test sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := config.Load(jobPath)
			if err != nil {
				return err
			}
			if job.Split == nil {
				return &ds.ConfigError{Key: "split", Msg: "run needs a split section"}
			}
			log := a.log.With(zap.String("run_id", uuid.NewString()))
			f, err := a.cleaned(cmd.Context(), log, job)
			if err != nil {
				return err
			}
			return a.splitAndWrite(cmd.OutOrStdout(), log, job, f)
		},
	}
	cmd.Flags().StringVarP(&jobPath, "config", "c", "", "job file (.json, .yaml or .toml)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// cleaned reads the job's input and applies its stages.
func (a *app) cleaned(ctx context.Context, log *zap.Logger, job config.Job) (*ds.Frame, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := readFrame(job.Input)
	if err != nil {
		return nil, err
	}
	log.Info("read input",
		zap.String("path", job.Input.Path),
		zap.Int("rows", f.Rows()),
		zap.Strings("columns", f.Schema().Names()))
	opts := []clean.Option{clean.WithLogger(log)}
	if job.Strict {
		opts = append(opts, clean.Strict())
	}
	out, err := clean.CleanRaw(ctx, f, job.Stages, opts...)
	if err != nil {
		return nil, fmt.Errorf("clean %s: %w", job.Input.Path, err)
	}
	return out, nil
}

func (a *app) splitAndWrite(w io.Writer, log *zap.Logger, job config.Job, f *ds.Frame) error {
	s := job.Split
	train, test, err := split.Split(f, s.Column, s.RatioOrDefault(), s.SeedOrDefault())
	if err != nil {
		return err
	}
	for _, part := range []struct {
		name  string
		frame *ds.Frame
	}{{"train", train}, {"test", test}} {
		files, err := writeFrame(job.Output, part.name, part.frame)
		if err != nil {
			return fmt.Errorf("write %s: %w", part.name, err)
		}
		sum, err := report.Summarize(part.name, part.frame, s.Column)
		if err != nil {
			return err
		}
		log.Info("wrote split",
			zap.String("split", part.name),
			zap.Int("rows", part.frame.Rows()),
			zap.Any("strata", sum.Strata),
			zap.Strings("files", files))
		fmt.Fprintln(w, sum.Text())
	}
	return nil
}
