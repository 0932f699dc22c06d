package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/adityavivek11/upload-relay/internal/client"
)

var (
	flagDirect bool
	flagImage  bool
	flagVideo  bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a file and print its public URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, closer, err := client.FromPath(args[0])
		if err != nil {
			return err
		}
		defer closer.Close()

		var transport client.Transport
		if flagDirect {
			transport = &client.DirectTransport{BaseURL: serverURL}
		} else {
			transport = &client.RelayTransport{BaseURL: serverURL}
		}

		u := client.New(transport, pickProfile(f),
			client.WithStatusFunc(func(s client.Status) {
				if s.Phase != client.PhaseUploading {
					return
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "\r%3d%%  %s / %s  (%s/s)   ",
					s.Progress,
					humanize.IBytes(uint64(s.BytesLoaded)),
					humanize.IBytes(uint64(s.BytesTotal)),
					humanize.IBytes(uint64(s.Rate)))
			}))

		res, err := u.Upload(cmd.Context(), f)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), res.URL)
		return nil
	},
}

// pickProfile resolves the validation profile: explicit flags win, otherwise
// it is inferred from the file's MIME type.
func pickProfile(f client.File) client.Profile {
	switch {
	case flagImage:
		return client.ImageProfile
	case flagVideo:
		return client.VideoProfile
	case strings.HasPrefix(f.ContentType, "image/"):
		return client.ImageProfile
	default:
		return client.VideoProfile
	}
}

func init() {
	uploadCmd.Flags().BoolVar(&flagDirect, "direct", false,
		"upload straight to the bucket via a presigned URL instead of through the relay")
	uploadCmd.Flags().BoolVar(&flagImage, "image", false, "validate as an image upload")
	uploadCmd.Flags().BoolVar(&flagVideo, "video", false, "validate as a video upload")
	uploadCmd.MarkFlagsMutuallyExclusive("image", "video")
}
