package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	var write string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Prints the configuration after defaults, the --config file and GWPE_*
environment overrides have been applied. --write saves it as YAML, which is
a convenient starting point for a new run.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if write != "" {
				if err := a.cfg.Save(write); err != nil {
					return err
				}
				_, err := fmt.Fprintf(a.out, "configuration written to %s\n", write)
				return err
			}
			enc := yaml.NewEncoder(a.out)
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&write, "write", "", "save the effective configuration to this path")
	return cmd
}
