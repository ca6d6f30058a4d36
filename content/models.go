// Package content pages the posts, replies and profiles of the social
// content service. Each collection has a fixed cursor schema, a closed set of
// filters and an orderBy enum; Service binds them to a store.
package content

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nrfta/keyset-paging/cursor"
)

// Document field names shared by the stores, filters and schemas.
const (
	FieldID                  = "_id"
	FieldCreatedAt           = "createdAt"
	FieldAuthorProfileID     = "authorProfileId"
	FieldPostAuthorProfileID = "postAuthorProfileId"
	FieldPostID              = "postId"
	FieldBlocked             = "blocked"
	FieldUsername            = "username"
	FieldFullName            = "fullName"
)

// Post is a top-level piece of content written by a profile.
type Post struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	AuthorProfileID primitive.ObjectID `bson:"authorProfileId" json:"authorProfileId"`
	Blocked         bool               `bson:"blocked,omitempty" json:"blocked"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	Media           string             `bson:"media,omitempty" json:"media,omitempty"`
	Text            string             `bson:"text" json:"text"`
}

// Reply is a response to a post.
type Reply struct {
	ID                  primitive.ObjectID `bson:"_id" json:"id"`
	AuthorProfileID     primitive.ObjectID `bson:"authorProfileId" json:"authorProfileId"`
	Blocked             bool               `bson:"blocked,omitempty" json:"blocked"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	Media               string             `bson:"media,omitempty" json:"media,omitempty"`
	PostAuthorProfileID primitive.ObjectID `bson:"postAuthorProfileId" json:"postAuthorProfileId"`
	PostID              primitive.ObjectID `bson:"postId" json:"postId"`
	Text                string             `bson:"text" json:"text"`
}

// Profile holds the public metadata of a user.
type Profile struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	AccountID   string               `bson:"accountId" json:"accountId"`
	Avatar      string               `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Following   []primitive.ObjectID `bson:"following" json:"following"`
	FullName    string               `bson:"fullName" json:"fullName,omitempty"`
	Username    string               `bson:"username" json:"username"`
}

// Ids travel through cursors and filters as hex strings; the Mongo fetchers
// convert them back to ObjectIDs.

var postSchema = cursor.NewSchema[*Post]().
	Field(FieldCreatedAt, "c", cursor.KindTime, func(p *Post) any { return p.CreatedAt }).
	ID(FieldID, cursor.ASC, "i", cursor.KindString, func(p *Post) any { return p.ID.Hex() }).
	Validate(FieldID, validObjectID)

var replySchema = cursor.NewSchema[*Reply]().
	Field(FieldCreatedAt, "c", cursor.KindTime, func(r *Reply) any { return r.CreatedAt }).
	ID(FieldID, cursor.ASC, "i", cursor.KindString, func(r *Reply) any { return r.ID.Hex() }).
	Validate(FieldID, validObjectID)

var profileSchema = cursor.NewSchema[*Profile]().
	Field(FieldUsername, "u", cursor.KindString, func(p *Profile) any { return p.Username }).
	Field(FieldFullName, "f", cursor.KindString, func(p *Profile) any { return p.FullName }).
	ID(FieldID, cursor.ASC, "i", cursor.KindString, func(p *Profile) any { return p.ID.Hex() }).
	Validate(FieldID, validObjectID)

func validObjectID(v any) error {
	s, _ := v.(string)
	if !primitive.IsValidObjectID(s) {
		return errors.New("not a valid object id")
	}
	return nil
}

// PostSchema returns the cursor schema of the posts collection.
func PostSchema() *cursor.Schema[*Post] { return postSchema }

// ReplySchema returns the cursor schema of the replies collection.
func ReplySchema() *cursor.Schema[*Reply] { return replySchema }

// ProfileSchema returns the cursor schema of the profiles collection.
func ProfileSchema() *cursor.Schema[*Profile] { return profileSchema }

// PostField reads a post field by document name, for in-memory stores.
func PostField(p *Post, field string) (any, bool) {
	switch field {
	case FieldID:
		return p.ID.Hex(), true
	case FieldAuthorProfileID:
		return p.AuthorProfileID.Hex(), true
	case FieldBlocked:
		return p.Blocked, true
	case FieldCreatedAt:
		return p.CreatedAt, true
	}
	return nil, false
}

// ReplyField reads a reply field by document name, for in-memory stores.
func ReplyField(r *Reply, field string) (any, bool) {
	switch field {
	case FieldID:
		return r.ID.Hex(), true
	case FieldAuthorProfileID:
		return r.AuthorProfileID.Hex(), true
	case FieldPostAuthorProfileID:
		return r.PostAuthorProfileID.Hex(), true
	case FieldPostID:
		return r.PostID.Hex(), true
	case FieldBlocked:
		return r.Blocked, true
	case FieldCreatedAt:
		return r.CreatedAt, true
	}
	return nil, false
}

// ProfileField reads a profile field by document name, for in-memory stores.
func ProfileField(p *Profile, field string) (any, bool) {
	switch field {
	case FieldID:
		return p.ID.Hex(), true
	case FieldUsername:
		return p.Username, true
	case FieldFullName:
		return p.FullName, true
	}
	return nil, false
}
