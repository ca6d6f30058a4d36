package content

import (
	"context"

	"github.com/nrfta/keyset-paging"
)

// ProfileDirectory resolves profiles for the collection filters that are
// keyed by username or by a followed set.
// Both lookups return nil without error when no profile matches.
type ProfileDirectory interface {
	ProfileByUsername(ctx context.Context, username string) (*Profile, error)
	ProfileByID(ctx context.Context, id string) (*Profile, error)
}

// StoreDirectory is a ProfileDirectory over any profiles Fetcher.
type StoreDirectory struct {
	profiles paging.Fetcher[*Profile]
}

// NewDirectory creates a ProfileDirectory backed by profiles.
func NewDirectory(profiles paging.Fetcher[*Profile]) *StoreDirectory {
	return &StoreDirectory{profiles: profiles}
}

// ProfileByUsername implements ProfileDirectory.
func (d *StoreDirectory) ProfileByUsername(ctx context.Context, username string) (*Profile, error) {
	return d.first(ctx, paging.Eq{Field: FieldUsername, Value: username})
}

// ProfileByID implements ProfileDirectory.
func (d *StoreDirectory) ProfileByID(ctx context.Context, id string) (*Profile, error) {
	if err := checkID("id", id); err != nil {
		return nil, err
	}
	return d.first(ctx, paging.Eq{Field: FieldID, Value: id})
}

func (d *StoreDirectory) first(ctx context.Context, filter paging.Predicate) (*Profile, error) {
	found, err := d.profiles.Fetch(ctx, paging.FetchParams{
		Filter: filter,
		Order:  paging.Order{Sort: defaultProfileSort, IDField: FieldID},
		Limit:  1,
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}
