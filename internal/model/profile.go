package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Social holds optional social network links.
type Social struct {
	YouTube   string `bson:"youtube,omitempty" json:"youtube,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
}

// Experience is a job entry on a profile.
type Experience struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Company     string             `bson:"company" json:"company"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	From        time.Time          `bson:"from" json:"from"`
	To          *time.Time         `bson:"to,omitempty" json:"to,omitempty"`
	Current     bool               `bson:"current" json:"current"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
}

// Education is a school entry on a profile.
type Education struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	School       string             `bson:"school" json:"school"`
	Degree       string             `bson:"degree" json:"degree"`
	FieldOfStudy string             `bson:"fieldofstudy" json:"fieldOfStudy"`
	From         *time.Time         `bson:"from,omitempty" json:"from,omitempty"`
	To           *time.Time         `bson:"to,omitempty" json:"to,omitempty"`
	Current      bool               `bson:"current" json:"current"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
}

// Profile is the one-per-user professional profile. Experience and Education
// are kept most-recent-first.
//
// Owner is filled in by the service before the profile is returned to a
// client; it is not stored.
type Profile struct {
	ID             primitive.ObjectID `bson:"_id" json:"_id"`
	User           primitive.ObjectID `bson:"user" json:"-"`
	Owner          *UserSummary       `bson:"-" json:"user"`
	Company        string             `bson:"company,omitempty" json:"company,omitempty"`
	Website        string             `bson:"website,omitempty" json:"website,omitempty"`
	Location       string             `bson:"location,omitempty" json:"location,omitempty"`
	Status         string             `bson:"status" json:"status"`
	Skills         []string           `bson:"skills" json:"skills"`
	Bio            string             `bson:"bio,omitempty" json:"bio,omitempty"`
	GitHubUsername string             `bson:"githubusername,omitempty" json:"githubusername,omitempty"`
	Experience     []Experience       `bson:"experience" json:"experience"`
	Education      []Education        `bson:"education" json:"education"`
	Social         Social             `bson:"social" json:"social"`
	Date           time.Time          `bson:"date" json:"date"`
	Version        int64              `bson:"__v" json:"__v"`
}

// ExperienceIndex returns the position of the experience entry with id, or -1.
func (p *Profile) ExperienceIndex(id primitive.ObjectID) int {
	for i := range p.Experience {
		if p.Experience[i].ID == id {
			return i
		}
	}
	return -1
}

// EducationIndex returns the position of the education entry with id, or -1.
func (p *Profile) EducationIndex(id primitive.ObjectID) int {
	for i := range p.Education {
		if p.Education[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	c := *p
	if p.Owner != nil {
		o := *p.Owner
		c.Owner = &o
	}
	c.Skills = make([]string, len(p.Skills))
	copy(c.Skills, p.Skills)
	c.Experience = make([]Experience, len(p.Experience))
	for i, e := range p.Experience {
		e.To = cloneTime(e.To)
		c.Experience[i] = e
	}
	c.Education = make([]Education, len(p.Education))
	for i, e := range p.Education {
		e.From = cloneTime(e.From)
		e.To = cloneTime(e.To)
		c.Education[i] = e
	}
	return &c
}

// Normalize replaces nil lists with empty ones so they encode as [] rather
// than null.
func (p *Profile) Normalize() {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
