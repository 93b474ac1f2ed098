package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-gwpe/pe/artifact"
	"github.com/cwbudde/algo-gwpe/pe/param"
	"github.com/cwbudde/algo-gwpe/pe/posterior"
	"github.com/cwbudde/algo-gwpe/pe/summary"
)

func newSummarizeCmd(a *app) *cobra.Command {
	var (
		publish bool
		burnIn  int
		thin    int
	)

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Reduce the stored chain to a MAP estimate and credible intervals",
		Long: `Discards summary.burn_in iterations, keeps every summary.thin-th of the
rest, and flattens the chain. The MAP point is the best retained sample or,
with summary.map_method=optimize, a Nelder-Mead refinement of it. Samples
and the MAP table are written as parquet to artifacts.dir; --publish also
uploads them to artifacts.s3.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("burn-in") {
				a.cfg.Summary.BurnIn = burnIn
			}
			if cmd.Flags().Changed("thin") {
				a.cfg.Summary.Thin = thin
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.runSummarize(cmd, publish)
		},
	}
	cmd.Flags().BoolVar(&publish, "publish", false, "upload artifacts to artifacts.s3")
	cmd.Flags().IntVar(&burnIn, "burn-in", 0, "override summary.burn_in")
	cmd.Flags().IntVar(&thin, "thin", 1, "override summary.thin")
	return cmd
}

func (a *app) runSummarize(cmd *cobra.Command, publish bool) error {
	ctx := cmd.Context()
	sc := a.cfg.Summary

	store, err := a.openStore()
	if err != nil {
		return err
	}
	c, err := store.Load(ctx)
	store.Close()
	if err != nil {
		return err
	}

	est, samples, err := summary.Summarize(c, sc.BurnIn, sc.Thin, sc.Levels)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", a.cfg.Store.Path, err)
	}
	a.logger.Info("chain summarized",
		zap.Int("iterations", c.Len()),
		zap.Int("burn_in", sc.BurnIn),
		zap.Int("thin", sc.Thin),
		zap.Int("samples", len(samples)),
	)

	if sc.MAPMethod == "optimize" {
		lk, err := a.likelihood(ctx)
		if err != nil {
			return err
		}
		opt, err := summary.MAPByOptimization(posterior.FromLikelihood(lk).LogPosterior, est.Params)
		if err != nil {
			return err
		}
		if est, err = opt.WithIntervals(samples, sc.Levels); err != nil {
			return err
		}
	}

	samplesPath := filepath.Join(a.cfg.Artifacts.Dir, artifact.SamplesFile)
	estimatePath := filepath.Join(a.cfg.Artifacts.Dir, artifact.EstimateFile)
	if err := artifact.WriteSamples(samplesPath, samples); err != nil {
		return err
	}
	if err := artifact.WriteEstimate(estimatePath, est); err != nil {
		return err
	}

	if err := a.printEstimate(est); err != nil {
		return err
	}

	if !publish {
		return nil
	}
	s3cfg := a.cfg.Artifacts.S3
	client, err := artifact.NewS3Client(ctx, s3cfg)
	if err != nil {
		return err
	}
	pub, err := artifact.NewPublisher(client, s3cfg.Bucket, s3cfg.Prefix, artifact.WithLogger(a.logger))
	if err != nil {
		return err
	}
	keys, err := pub.PublishFiles(ctx, samplesPath, estimatePath)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintf(a.out, "published s3://%s/%s\n", s3cfg.Bucket, k)
	}
	return nil
}

func (a *app) printEstimate(est summary.Estimate) error {
	fmt.Fprintf(a.out, "MAP (%s), log posterior %.4f\n", est.Method, est.LogPost)

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARAMETER\tMAP\t68%\t95%")
	for i, name := range param.Names {
		fmt.Fprintf(tw, "%s\t%.4g\t%s\t%s\n", name, est.Params[i],
			formatInterval(est, i, artifact.OneSigma), formatInterval(est, i, artifact.TwoSigma))
	}
	return tw.Flush()
}

func formatInterval(est summary.Estimate, i int, level float64) string {
	iv, ok := est.Interval(i, level)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("[%.4g, %.4g]", iv.Lo, iv.Hi)
}
