package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nrfta/keyset-paging/content"
)

func (a *app) newRepliesCommand() *cobra.Command {
	var (
		page     pageFlags
		to, from string
		postID   string
		author   string
	)

	cmd := &cobra.Command{
		Use:   "replies",
		Short: "Page replies to or from a username, to a post, or by a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			contentArgs := content.ContentArgs{
				QueryArgs: page.queryArgs(cmd),
				OrderBy:   content.ContentOrderBy(page.orderBy),
			}

			return a.run(cmd, func(ctx context.Context, svc *content.Service) (any, error) {
				switch {
				case postID != "":
					return svc.PostReplies(ctx, postID, contentArgs)
				case author != "":
					return svc.OwnReplies(ctx, author, contentArgs)
				}
				return svc.Replies(ctx, content.RepliesArgs{ContentArgs: contentArgs, To: to, From: from})
			})
		},
	}

	page.register(cmd)
	cmd.Flags().StringVar(&to, "to", "", "username whose posts were replied to")
	cmd.Flags().StringVar(&from, "from", "", "username who wrote the replies")
	cmd.Flags().StringVar(&postID, "post", "", "post id whose replies to page")
	cmd.Flags().StringVar(&author, "author", "", "profile id whose replies to page")
	cmd.MarkFlagsMutuallyExclusive("post", "author", "to")
	cmd.MarkFlagsMutuallyExclusive("post", "author", "from")

	return cmd
}
