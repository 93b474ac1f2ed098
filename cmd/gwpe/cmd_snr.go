package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-gwpe/gw/detector"
	"github.com/cwbudde/algo-gwpe/pe/artifact"
	"github.com/cwbudde/algo-gwpe/pe/summary"
)

func newSNRCmd(a *app) *cobra.Command {
	var estimatePath string

	cmd := &cobra.Command{
		Use:   "snr",
		Short: "Matched-filter SNR of the MAP template in every detector",
		Long: `Reads the MAP table written by gwpe summarize, projects the MAP template
onto H1, L1 and V1, and reports the peak matched-filter SNR, its GPS time,
the optimal SNR of the template, and whitened-residual diagnostics: RMS
before and after subtracting the template, excess kurtosis, spectral
flatness, and the peak frequency of the whitened template.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if estimatePath == "" {
				estimatePath = filepath.Join(a.cfg.Artifacts.Dir, artifact.EstimateFile)
			}
			return a.runSNR(cmd, estimatePath)
		},
	}
	cmd.Flags().StringVar(&estimatePath, "estimate", "", "MAP table (default artifacts.dir/"+artifact.EstimateFile+")")
	return cmd
}

func (a *app) runSNR(cmd *cobra.Command, estimatePath string) error {
	est, err := artifact.ReadEstimate(estimatePath)
	if err != nil {
		return fmt.Errorf("%w (run gwpe summarize first?)", err)
	}

	lk, err := a.likelihood(cmd.Context())
	if err != nil {
		return err
	}
	tmpl, err := lk.Template(est.Params)
	if err != nil {
		return err
	}
	ac := lk.Context()

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DETECTOR\tPEAK SNR\tPEAK GPS\tOFFSET\tOPTIMAL\tDATA RMS\tRESID RMS\tRESID KURT\tRESID FLAT\tTEMPLATE HZ\tLIKELIHOOD")
	for _, d := range detector.All {
		diag, err := summary.Diagnose(ac, tmpl[d], d)
		if err != nil {
			return fmt.Errorf("%s: %w", d, err)
		}
		z := diag.SNR

		a.logger.Debug("snr",
			zap.Stringer("detector", d),
			zap.Float64("peak", z.Peak),
			zap.Float64("peak_time", z.PeakTime),
			zap.Float64("residual_flatness", diag.ResidualSpectrum.Flatness),
		)

		fmt.Fprintf(tw, "%s\t%.2f\t%.4f\t%+.4f\t%.2f\t%.3g\t%.3g\t%.2f\t%.3f\t%.1f\t%t\n",
			d, z.Peak, z.PeakTime, z.PeakTime-ac.Reference(), z.Sigma,
			diag.Data.RMS, diag.Residual.RMS, diag.Residual.ExcessKurtosis,
			diag.ResidualSpectrum.Flatness, diag.Template.PeakFrequency, ac.Includes(d))
	}
	return tw.Flush()
}
