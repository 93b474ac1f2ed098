// Command gwpe estimates the source parameters of GW190521 from
// three-detector strain.
//
// Usage:
//
//	gwpe [--config gwpe.yaml] <command> [flags]
//
// A typical run:
//
//	gwpe inject                 # write synthetic H1/L1/V1 strain to data.dir
//	gwpe psd                    # inspect the noise spectra
//	gwpe sample                 # run the ensemble sampler into store.path
//	gwpe sample --resume        # continue an interrupted run
//	gwpe summarize --publish    # MAP, intervals, parquet artifacts, S3 upload
//	gwpe snr                    # matched-filter SNR of the MAP template
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
