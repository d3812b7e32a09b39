package main

import (
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/unieats/internal/version"
)

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipDepsAnnotation: "true"},
		Run: func(*cobra.Command, []string) {
			c.println(version.String())
		},
	}
}
