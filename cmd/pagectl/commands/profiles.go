package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nrfta/keyset-paging/content"
)

func (a *app) newProfilesCommand() *cobra.Command {
	var page pageFlags

	cmd := &cobra.Command{
		Use:   "profiles <profile-id>",
		Short: "Page the profiles a profile follows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profileArgs := content.ProfileArgs{
				QueryArgs: page.queryArgs(cmd),
				OrderBy:   content.ProfileOrderBy(page.orderBy),
			}

			return a.run(cmd, func(ctx context.Context, svc *content.Service) (any, error) {
				return svc.FollowedProfiles(ctx, args[0], profileArgs)
			})
		},
	}

	page.register(cmd)

	return cmd
}
