package main

import (
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-gwpe/gw/detector"
	"github.com/cwbudde/algo-gwpe/gw/series"
	"github.com/cwbudde/algo-gwpe/gw/strain"
)

var defaultPSDFrequencies = []float64{20, 30, 50, 80, 100, 200, 500}

func newPSDCmd(a *app) *cobra.Command {
	var freqs []float64

	cmd := &cobra.Command{
		Use:   "psd",
		Short: "Print per-detector ASD with Tukey and rectangular Welch windows",
		Long: `Estimates the noise spectrum of each detector from the full stored strain
with the configured Welch settings, once with the configured taper and once
with a rectangular window, and prints the amplitude spectral density at the
requested frequencies.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPSD(cmd, freqs)
		},
	}
	cmd.Flags().Float64SliceVar(&freqs, "freq", defaultPSDFrequencies, "frequencies (Hz) at which to report the ASD")
	return cmd
}

func (a *app) runPSD(cmd *cobra.Command, freqs []float64) error {
	data, err := strain.LoadAll(cmd.Context(), strain.ParquetProvider{Dir: a.cfg.Data.Dir})
	if err != nil {
		return fmt.Errorf("%w (run gwpe inject first?)", err)
	}

	tapered := a.cfg.Data.PSD
	rect := tapered
	rect.Window = "rectangular"

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "DETECTOR\tWINDOW\t")
	for _, f := range freqs {
		fmt.Fprintf(tw, "%gHz\t", f)
	}
	fmt.Fprintln(tw, "BAND RMS\t")

	for _, d := range detector.All {
		for _, wc := range []strain.PSDConfig{tapered, rect} {
			psd, err := strain.EstimatePSD(data[d], wc)
			if err != nil {
				return fmt.Errorf("%s: %w", d, err)
			}
			asd := psd.Sqrt()

			name := wc.Window
			if name == "" {
				name = "tukey"
			}
			fmt.Fprintf(tw, "%s\t%s\t", d, name)
			for _, f := range freqs {
				fmt.Fprintf(tw, "%.3e\t", asd.At(f))
			}
			fmt.Fprintf(tw, "%.3e\t\n", bandRMS(psd, a.cfg.Likelihood.LowerCutoff, 90))
		}
	}
	return tw.Flush()
}

// bandRMS integrates the PSD between low and high and returns the
// equivalent strain RMS.
func bandRMS(psd series.Spectrum, low, high float64) float64 {
	var sum float64
	for k, f := range psd.Frequencies() {
		if f >= low && f <= high {
			sum += psd.Data[k] * psd.Df
		}
	}
	return math.Sqrt(sum)
}
