// Package model holds the documents persisted by the stores. Field tags serve
// both the BSON encoding used by the stores and the JSON API responses.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account. Password holds the bcrypt hash and is never serialized
// to JSON.
type User struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	Avatar   string             `bson:"avatar" json:"avatar"`
	Date     time.Time          `bson:"date" json:"date"`
}

// UserSummary is the subset of User embedded in profile responses.
type UserSummary struct {
	ID     primitive.ObjectID `json:"_id"`
	Name   string             `json:"name"`
	Avatar string             `json:"avatar"`
}

// Summary returns the public name/avatar view of u.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}
