package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newListCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List uploaded videos, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			videos, err := opts.client().ListVideos(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), videos)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tPUBLIC ID\tORIGINAL\tCOMPRESSED\tDURATION\tUPLOADED")
			for _, v := range videos {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%ss\t%s\n",
					v.ID, v.Title, v.PublicID, humanBytes(v.OriginalSize), humanBytes(v.CompressedSize), v.Duration,
					humanize.Time(v.CreatedAt))
			}
			return tw.Flush()
		},
	}
}
