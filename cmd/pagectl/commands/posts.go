package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nrfta/keyset-paging/content"
)

func (a *app) newPostsCommand() *cobra.Command {
	var (
		page           pageFlags
		followedBy     string
		includeBlocked bool
		author         string
	)

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Page the posts feed, or the posts of one profile with --author",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			contentArgs := content.ContentArgs{
				QueryArgs: page.queryArgs(cmd),
				OrderBy:   content.ContentOrderBy(page.orderBy),
			}

			return a.run(cmd, func(ctx context.Context, svc *content.Service) (any, error) {
				if author != "" {
					return svc.OwnPosts(ctx, author, contentArgs)
				}

				postsArgs := content.PostsArgs{ContentArgs: contentArgs, FollowedBy: followedBy}
				if cmd.Flags().Changed("include-blocked") {
					postsArgs.IncludeBlocked = &includeBlocked
				}
				return svc.Posts(ctx, postsArgs)
			})
		},
	}

	page.register(cmd)
	cmd.Flags().StringVar(&followedBy, "followed-by", "", "only posts by profiles this username follows, and their own")
	cmd.Flags().BoolVar(&includeBlocked, "include-blocked", true, "include blocked posts")
	cmd.Flags().StringVar(&author, "author", "", "profile id whose posts to page")
	cmd.MarkFlagsMutuallyExclusive("author", "followed-by")

	return cmd
}
