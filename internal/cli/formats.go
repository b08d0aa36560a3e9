package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func formatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the registered formats and their media types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tMEDIA TYPES")
			for _, f := range a.config.Formats().Formats() {
				name := f.Name
				if name == a.settings.DefaultFormat {
					name += " (default)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, f.Kind, strings.Join(f.MediaTypes, ", "))
			}
			return w.Flush()
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hxres version %s\n", Version)
		},
	}
}
