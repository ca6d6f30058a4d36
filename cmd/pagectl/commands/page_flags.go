package commands

import (
	"github.com/spf13/cobra"

	"github.com/nrfta/keyset-paging"
)

// pageFlags are the connection arguments shared by every subcommand.
type pageFlags struct {
	first, last   int
	after, before string
	orderBy       string
}

func (p *pageFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVar(&p.first, "first", 0, "number of items after --after")
	flags.IntVar(&p.last, "last", 0, "number of items before --before")
	flags.StringVar(&p.after, "after", "", "cursor to page forward from")
	flags.StringVar(&p.before, "before", "", "cursor to page backward from")
	flags.StringVar(&p.orderBy, "order-by", "", "order, e.g. createdAt_DESC")
}

// queryArgs returns the arguments that were set on the command line.
func (p *pageFlags) queryArgs(cmd *cobra.Command) paging.QueryArgs {
	var qa paging.QueryArgs
	flags := cmd.Flags()

	if flags.Changed("first") {
		first := p.first
		qa.First = &first
	}
	if flags.Changed("last") {
		last := p.last
		qa.Last = &last
	}
	if p.after != "" {
		after := p.after
		qa.After = &after
	}
	if p.before != "" {
		before := p.before
		qa.Before = &before
	}
	return qa
}
