// File: cmd/validate.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/embody-cli/internal/scenario"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [scenario...]",
		Short: "Checks scenario files without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			invalid := 0
			for _, path := range args {
				s, err := scenario.Load(path)
				if err != nil {
					invalid++
					fmt.Fprintf(out, "invalid %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "ok %s (%d props, %d agents)\n", s.Name, len(s.Props), len(s.Agents))
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d scenario(s) invalid", invalid, len(args))
			}
			return nil
		},
	}
}
