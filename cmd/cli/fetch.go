package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/memohai/pixeltools/internal/boot"
	"github.com/memohai/pixeltools/internal/imaging"
	"github.com/memohai/pixeltools/internal/media"
	"github.com/memohai/pixeltools/internal/resolver"
)

type fetchOptions struct {
	output     string
	noAnimated bool
	invert     bool
	maxSize    int64
}

func newFetchCmd(root *rootOptions) *cobra.Command {
	opts := &fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch an image or share-page URL through the sanitizer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.load(cmd)
			if err != nil {
				return err
			}
			policy := rt.rc.Policy
			if opts.noAnimated {
				policy = policy.WithoutAnimated()
			}
			if opts.maxSize > 0 {
				policy = policy.WithMaxSize(opts.maxSize)
			}

			client := boot.ProvideHTTPClient(rt.rc)
			unfurler := boot.ProvideUnfurler(rt.logger, client, rt.rc)
			sanitizer := boot.ProvideSanitizer(rt.logger, client, unfurler, rt.rc)

			img, err := sanitizer.Sanitize(cmd.Context(), resolver.URLCandidate{URL: args[0]}, policy.AllowList(), policy)
			if err != nil {
				return fmt.Errorf("%s: %s", media.KindOf(err), media.Message(err))
			}
			if opts.invert {
				if img, err = imaging.Invert(img, policy.MaxWidth, policy.MaxHeight); err != nil {
					return fmt.Errorf("invert: %s", media.Message(err))
				}
			}
			if err := writeOutput(cmd.OutOrStdout(), opts.output, img.Data); err != nil {
				return err
			}
			target := opts.output
			if target == "" || target == "-" {
				target = "stdout"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s) from %s to %s\n",
				media.HumanSize(img.Size()), img.ContentType, img.URL, target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the image to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.noAnimated, "no-animated", false, "reject GIFs")
	cmd.Flags().BoolVar(&opts.invert, "invert", false, "invert the image colors before writing")
	cmd.Flags().Int64Var(&opts.maxSize, "max-size", 0, "override the byte ceiling")
	return cmd
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
