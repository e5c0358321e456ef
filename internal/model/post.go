package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like records one user's like. A user appears at most once per post.
type Like struct {
	User primitive.ObjectID `bson:"user" json:"user"`
}

// Comment is a reply on a post. Name and Avatar are copied from the author
// when the comment is created and are not kept in sync afterwards.
type Comment struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	User   primitive.ObjectID `bson:"user" json:"user"`
	Text   string             `bson:"text" json:"text"`
	Name   string             `bson:"name" json:"name"`
	Avatar string             `bson:"avatar" json:"avatar"`
	Date   time.Time          `bson:"date" json:"date"`
}

// Post is a feed entry. Name and Avatar are a snapshot of the author taken at
// creation time. Likes and Comments are kept newest-first.
type Post struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	User     primitive.ObjectID `bson:"user" json:"user"`
	Text     string             `bson:"text" json:"text"`
	Name     string             `bson:"name" json:"name"`
	Avatar   string             `bson:"avatar" json:"avatar"`
	Likes    []Like             `bson:"likes" json:"likes"`
	Comments []Comment          `bson:"comments" json:"comments"`
	Date     time.Time          `bson:"date" json:"date"`
	Version  int64              `bson:"__v" json:"__v"`
}

// OwnedBy reports whether uid authored the post.
func (p *Post) OwnedBy(uid primitive.ObjectID) bool { return p.User == uid }

// LikeIndex returns the position of uid's like, or -1. Likes are matched by
// user reference, never by position.
func (p *Post) LikeIndex(uid primitive.ObjectID) int {
	for i := range p.Likes {
		if p.Likes[i].User == uid {
			return i
		}
	}
	return -1
}

// CommentIndex returns the position of the comment with id, or -1.
func (p *Post) CommentIndex(id primitive.ObjectID) int {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of p.
func (p *Post) Clone() *Post {
	c := *p
	c.Likes = make([]Like, len(p.Likes))
	copy(c.Likes, p.Likes)
	c.Comments = make([]Comment, len(p.Comments))
	copy(c.Comments, p.Comments)
	return &c
}

// Normalize replaces nil lists with empty ones so they encode as [] rather
// than null.
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}
