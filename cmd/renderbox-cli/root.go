package main

import (
	"os"

	"renderbox/pkg/client"

	"github.com/spf13/cobra"
)

type cliOptions struct {
	server     string
	token      string
	jsonOutput bool
	maxVideoMB int64
	maxImageMB int64
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           "renderbox-cli",
		Short:         "Upload and list RenderBox media from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = version
	cmd.PersistentFlags().StringVar(&opts.server, "server", envOr("RENDERBOX_URL", "http://localhost:3000"), "RenderBox base URL")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("RENDERBOX_TOKEN"), "access token sent as Bearer")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().Int64Var(&opts.maxVideoMB, "max-video-mb", client.DefaultMaxVideoBytes>>20, "local video size limit in MB")
	cmd.PersistentFlags().Int64Var(&opts.maxImageMB, "max-image-mb", client.DefaultMaxImageBytes>>20, "local image size limit in MB")

	cmd.AddCommand(
		newUploadVideoCmd(opts),
		newUploadImageCmd(opts),
		newListCmd(opts),
		newURLCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}

func (o *cliOptions) client() *client.Client {
	return client.New(o.server,
		client.WithToken(o.token),
		client.WithLimits(client.Limits{
			MaxVideoBytes: o.maxVideoMB << 20,
			MaxImageBytes: o.maxImageMB << 20,
		}),
	)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
