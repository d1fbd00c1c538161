package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memohai/pixeltools/internal/boot"
	"github.com/memohai/pixeltools/internal/media"
)

func newUnfurlCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unfurl <url>",
		Short: "Print the direct media URL behind a Tenor or Giphy share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.load(cmd)
			if err != nil {
				return err
			}
			unfurler := boot.ProvideUnfurler(rt.logger, boot.ProvideHTTPClient(rt.rc), rt.rc)
			if !unfurler.Matches(args[0]) {
				fmt.Fprintln(cmd.ErrOrStderr(), "no unfurl strategy matches; printing the URL unchanged")
			}
			direct, err := unfurler.Unfurl(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %s", media.KindOf(err), media.Message(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), direct)
			return nil
		},
	}
}
