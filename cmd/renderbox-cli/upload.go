package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"renderbox/pkg/client"
	"renderbox/pkg/flow"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newUploadVideoCmd(opts *cliOptions) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "upload-video <file>",
		Short: "Upload a video (title defaults to the file name)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, size, err := openUpload(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			view, err := opts.client().UploadVideo(cmd.Context(), client.VideoUpload{
				Title:       title,
				Description: description,
				FileName:    filepath.Base(args[0]),
				Size:        size,
				File:        f,
			}, progressPrinter(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%s)\npublic id: %s\nsize: %s -> %s, duration %ss\n",
				view.Title, view.ID, view.PublicID, humanBytes(view.OriginalSize), humanBytes(view.CompressedSize), view.Duration)
			return err
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "video title, at most 100 characters")
	cmd.Flags().StringVar(&description, "description", "", "video description, at most 500 characters")
	return cmd
}

func newUploadImageCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload-image <file>",
		Short: "Upload an image and print its public id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, size, err := openUpload(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := opts.client().UploadImage(cmd.Context(), client.ImageUpload{
				FileName: filepath.Base(args[0]),
				Size:     size,
				File:     f,
			}, progressPrinter(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.PublicID)
			return err
		},
	}
}

func openUpload(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	if st.IsDir() {
		f.Close()
		return nil, 0, fmt.Errorf("%s is a directory", path)
	}
	return f, st.Size(), nil
}

// progressPrinter 可能同時被 pipe writer 與呼叫端 goroutine 呼叫
func progressPrinter(w io.Writer) client.ProgressFunc {
	var mu sync.Mutex
	last := -1
	return func(s flow.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		switch s.State {
		case flow.StateUploading:
			if s.Percent != last {
				last = s.Percent
				fmt.Fprintf(w, "\ruploading %3d%%", s.Percent)
			}
		case flow.StateUploaded:
			fmt.Fprintln(w, "\ruploading 100%")
		case flow.StateFailed:
			fmt.Fprintln(w)
		}
	}
}

func humanBytes(s string) string {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return s
	}
	return humanize.Bytes(n)
}
