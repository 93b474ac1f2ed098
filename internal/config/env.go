package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// applyEnvOverrides applies GWPE_* environment variables.
func (c *Config) applyEnvOverrides() error {
	str := map[string]*string{
		"GWPE_DATA_DIR":      &c.Data.Dir,
		"GWPE_STORE_PATH":    &c.Store.Path,
		"GWPE_ARTIFACTS_DIR": &c.Artifacts.Dir,
		"GWPE_S3_BUCKET":     &c.Artifacts.S3.Bucket,
		"GWPE_S3_PREFIX":     &c.Artifacts.S3.Prefix,
		"GWPE_S3_REGION":     &c.Artifacts.S3.Region,
		"GWPE_S3_ENDPOINT":   &c.Artifacts.S3.Endpoint,
		"GWPE_S3_ACCESS_KEY": &c.Artifacts.S3.AccessKey,
		"GWPE_S3_SECRET_KEY": &c.Artifacts.S3.SecretKey,
		"GWPE_LOG_LEVEL":     &c.Logging.Level,
		"GWPE_SUMMARY_MAP":   &c.Summary.MAPMethod,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"GWPE_WALKERS":    &c.Sampler.Walkers,
		"GWPE_ITERATIONS": &c.Sampler.Iterations,
		"GWPE_WORKERS":    &c.Sampler.Workers,
		"GWPE_BURN_IN":    &c.Summary.BurnIn,
		"GWPE_THIN":       &c.Summary.Thin,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		}
		*dst = n
	}

	if v := os.Getenv("GWPE_SEED"); v != "" {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: GWPE_SEED=%q: %v", ErrInvalid, v, err)
		}
		c.Sampler.Seed = n
	}
	if v := os.Getenv("GWPE_DETECTORS"); v != "" {
		c.Likelihood.Detectors = strings.Split(v, ",")
	}
	if v := os.Getenv("GWPE_LOG_DEVELOPMENT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: GWPE_LOG_DEVELOPMENT=%q: %v", ErrInvalid, v, err)
		}
		c.Logging.Development = b
	}
	return nil
}
