package content

import (
	"strings"

	"github.com/nrfta/keyset-paging"
)

// ContentOrderBy orders posts and replies.
type ContentOrderBy string

const (
	CreatedAtASC  ContentOrderBy = "createdAt_ASC"
	CreatedAtDESC ContentOrderBy = "createdAt_DESC"
)

// ProfileOrderBy orders profiles.
type ProfileOrderBy string

const (
	UsernameASC  ProfileOrderBy = "username_ASC"
	UsernameDESC ProfileOrderBy = "username_DESC"
	FullNameASC  ProfileOrderBy = "fullName_ASC"
	FullNameDESC ProfileOrderBy = "fullName_DESC"
)

var (
	defaultContentSort = paging.Sort{Field: FieldCreatedAt, Desc: true}
	defaultProfileSort = paging.Sort{Field: FieldUsername}
)

// Sort returns the sort named by o, or createdAt DESC when o is empty.
func (o ContentOrderBy) Sort() (paging.Sort, error) {
	switch o {
	case "":
		return defaultContentSort, nil
	case CreatedAtASC, CreatedAtDESC:
		return parseOrderBy(string(o)), nil
	}
	return paging.Sort{}, unknownOrderBy(string(o))
}

// Sort returns the sort named by o, or username ASC when o is empty.
func (o ProfileOrderBy) Sort() (paging.Sort, error) {
	switch o {
	case "":
		return defaultProfileSort, nil
	case UsernameASC, UsernameDESC, FullNameASC, FullNameDESC:
		return parseOrderBy(string(o)), nil
	}
	return paging.Sort{}, unknownOrderBy(string(o))
}

// parseOrderBy splits "field_DIRECTION".
func parseOrderBy(value string) paging.Sort {
	field, direction, _ := strings.Cut(value, "_")
	return paging.Sort{Field: field, Desc: direction == "DESC"}
}

func unknownOrderBy(value string) error {
	return &paging.InvalidArgumentError{Field: "orderBy", Reason: "unknown value " + value}
}
