package content

import (
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nrfta/keyset-paging"
)

// PostsByAuthor selects the posts written by one profile.
func PostsByAuthor(profileID string) paging.Predicate {
	return paging.Eq{Field: FieldAuthorProfileID, Value: profileID}
}

// PostsByAuthors selects the posts written by any of the profiles.
func PostsByAuthors(profileIDs ...string) paging.Predicate {
	return paging.In{Field: FieldAuthorProfileID, Values: anySlice(profileIDs)}
}

// PostsNotBlocked drops blocked posts.
func PostsNotBlocked() paging.Predicate {
	return paging.NotTrue{Field: FieldBlocked}
}

// RepliesByAuthor selects the replies written by one profile.
func RepliesByAuthor(profileID string) paging.Predicate {
	return paging.Eq{Field: FieldAuthorProfileID, Value: profileID}
}

// RepliesToAuthor selects the replies to posts written by one profile.
func RepliesToAuthor(profileID string) paging.Predicate {
	return paging.Eq{Field: FieldPostAuthorProfileID, Value: profileID}
}

// RepliesInPost selects the replies to one post.
func RepliesInPost(postID string) paging.Predicate {
	return paging.Eq{Field: FieldPostID, Value: postID}
}

// RepliesNotBlocked drops blocked replies.
func RepliesNotBlocked() paging.Predicate {
	return paging.NotTrue{Field: FieldBlocked}
}

// ProfilesIn selects the profiles with the given ids.
func ProfilesIn(profileIDs ...string) paging.Predicate {
	return paging.In{Field: FieldID, Values: anySlice(profileIDs)}
}

func anySlice(ids []string) []any {
	return lo.Map(ids, func(id string, _ int) any { return id })
}

// hexIDs converts ObjectIDs to the hex form used in filters.
func hexIDs(ids []primitive.ObjectID) []string {
	return lo.Map(ids, func(id primitive.ObjectID, _ int) string { return id.Hex() })
}

// checkID rejects ids that are not ObjectID hex strings.
func checkID(field, id string) error {
	if !primitive.IsValidObjectID(id) {
		return &paging.InvalidArgumentError{Field: field, Reason: "not a valid id"}
	}
	return nil
}
