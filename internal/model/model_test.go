package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPostIndexes(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	c1, c2 := primitive.NewObjectID(), primitive.NewObjectID()
	p := &Post{
		User:     a,
		Likes:    []Like{{User: b}, {User: a}},
		Comments: []Comment{{ID: c1, User: b}, {ID: c2, User: a}},
	}

	assert.True(t, p.OwnedBy(a))
	assert.False(t, p.OwnedBy(b))
	assert.Equal(t, 1, p.LikeIndex(a))
	assert.Equal(t, -1, p.LikeIndex(primitive.NewObjectID()))
	assert.Equal(t, 1, p.CommentIndex(c2))
	assert.Equal(t, -1, p.CommentIndex(primitive.NewObjectID()))
}

func TestPostCloneIsDeep(t *testing.T) {
	p := &Post{Likes: []Like{{User: primitive.NewObjectID()}}}
	c := p.Clone()
	c.Likes[0].User = primitive.NewObjectID()
	c.Likes = append(c.Likes, Like{})

	assert.Len(t, p.Likes, 1)
	assert.NotEqual(t, p.Likes[0].User, c.Likes[0].User)
	assert.NotNil(t, (&Post{}).Clone().Comments, "clone keeps empty lists non-nil")
}

func TestProfileCloneIsDeep(t *testing.T) {
	to := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &Profile{
		Skills:     []string{"go"},
		Experience: []Experience{{ID: primitive.NewObjectID(), To: &to}},
		Owner:      &UserSummary{Name: "A"},
	}
	c := p.Clone()
	c.Skills[0] = "js"
	*c.Experience[0].To = to.AddDate(1, 0, 0)
	c.Owner.Name = "B"

	assert.Equal(t, "go", p.Skills[0])
	assert.Equal(t, to, *p.Experience[0].To)
	assert.Equal(t, "A", p.Owner.Name)
	assert.Equal(t, 0, c.ExperienceIndex(p.Experience[0].ID))
	assert.Equal(t, -1, c.EducationIndex(p.Experience[0].ID))
}
