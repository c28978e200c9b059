package main

import (
	"fmt"
	"os"

	"renderbox/internal/media/delivery"
	"renderbox/internal/media/domain"

	"github.com/spf13/cobra"
)

type urlResult struct {
	URL          string `json:"url"`
	DownloadName string `json:"downloadName"`
}

func newURLCmd(opts *cliOptions) *cobra.Command {
	var kind, format, title, cloud, base string

	cmd := &cobra.Command{
		Use:   "url <publicId>",
		Short: "Build a delivery URL offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := domain.ParseKind(kind)
			if err != nil {
				return err
			}
			if cloud == "" {
				return fmt.Errorf("--cloud or CLOUDINARY_CLOUD_NAME is required")
			}

			params := delivery.Params{SocialFormat: format, Title: title}
			u, err := delivery.NewBuilder(base, cloud).Build(args[0], k, params)
			if err != nil {
				return err
			}

			res := urlResult{URL: u, DownloadName: delivery.DownloadName(k, params)}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writePlain(cmd.OutOrStdout(), "%s", res.URL)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(domain.KindOriginal), "transformation kind")
	cmd.Flags().StringVar(&format, "format", "", "social format name for social-crop")
	cmd.Flags().StringVar(&title, "title", "", "title used by video-download")
	cmd.Flags().StringVar(&cloud, "cloud", os.Getenv("CLOUDINARY_CLOUD_NAME"), "cloud name")
	cmd.Flags().StringVar(&base, "base", delivery.DefaultBaseURL, "delivery base URL")
	return cmd
}
