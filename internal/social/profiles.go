package social

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/robalobadob/connect2pros/internal/apperr"
	"github.com/robalobadob/connect2pros/internal/model"
	"github.com/robalobadob/connect2pros/internal/store"
)

// ProfileInput is the body of POST /api/profile.
//
// Status and Skills are required. Every other field is optional and
// present-or-absent: nil leaves the stored value alone, a non-nil value
// (including "") replaces it.
type ProfileInput struct {
	Status         *string    `json:"status"`
	Skills         *SkillList `json:"skills"`
	Company        *string    `json:"company"`
	Website        *string    `json:"website"`
	Location       *string    `json:"location"`
	Bio            *string    `json:"bio"`
	GitHubUsername *string    `json:"githubusername"`
	YouTube        *string    `json:"youtube"`
	Twitter        *string    `json:"twitter"`
	Facebook       *string    `json:"facebook"`
	LinkedIn       *string    `json:"linkedin"`
	Instagram      *string    `json:"instagram"`
}

func (in *ProfileInput) validate() error {
	var c checks
	c.require(presentPtr(in.Status), "status", "Status is required")
	c.require(in.Skills != nil && len(*in.Skills) > 0, "skills", "Skills is required")
	return c.err()
}

func (in *ProfileInput) applyTo(p *model.Profile) {
	p.Status = *in.Status
	p.Skills = []string(*in.Skills)
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Company, in.Company)
	set(&p.Website, in.Website)
	set(&p.Location, in.Location)
	set(&p.Bio, in.Bio)
	set(&p.GitHubUsername, in.GitHubUsername)
	set(&p.Social.YouTube, in.YouTube)
	set(&p.Social.Twitter, in.Twitter)
	set(&p.Social.Facebook, in.Facebook)
	set(&p.Social.LinkedIn, in.LinkedIn)
	set(&p.Social.Instagram, in.Instagram)
}

// ExperienceInput is the body of PUT /api/profile/experience.
type ExperienceInput struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// EducationInput is the body of PUT /api/profile/education.
type EducationInput struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// period validates from/to and returns them. from is nil when absent and not
// required; to is nil when absent or for current positions.
func period(c *checks, from, to string, current, fromRequired bool) (*time.Time, *time.Time) {
	var f *time.Time
	if present(from) {
		t, ok := parseDate(from)
		c.require(ok, "from", "From date is invalid")
		if ok {
			f = &t
		}
	} else {
		c.require(!fromRequired, "from", "From date is Required")
	}
	if current || !present(to) {
		return f, nil
	}
	t, ok := parseDate(to)
	c.require(ok, "to", "To date is invalid")
	if !ok {
		return f, nil
	}
	return f, &t
}

// populate attaches the owner's name and avatar to p.
func (s *Service) populate(ctx context.Context, p *model.Profile) error {
	u, err := s.users.ByID(ctx, p.User)
	switch {
	case err == nil:
		p.Owner = u.Summary()
	case errors.Is(err, store.ErrNotFound):
		p.Owner = &model.UserSummary{ID: p.User}
	default:
		return apperr.Internal(err)
	}
	return nil
}

func (s *Service) profileOf(ctx context.Context, uid primitive.ObjectID) (*model.Profile, error) {
	p, err := s.profiles.ByUser(ctx, uid)
	if err != nil {
		return nil, lookupErr(err, errNoProfile)
	}
	return p, nil
}

func (s *Service) populated(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	if err := s.populate(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// MyProfile returns the caller's profile.
func (s *Service) MyProfile(ctx context.Context, uid primitive.ObjectID) (*model.Profile, error) {
	p, err := s.profileOf(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.populated(ctx, p)
}

// ProfileByUser returns the profile of the user with the given hex id.
func (s *Service) ProfileByUser(ctx context.Context, userHex string) (*model.Profile, error) {
	uid, err := parseID(userHex, errNoProfile)
	if err != nil {
		return nil, err
	}
	return s.MyProfile(ctx, uid)
}

// ListProfiles returns every profile.
func (s *Service) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	list, err := s.profiles.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	for _, p := range list {
		if err := s.populate(ctx, p); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// UpsertProfile creates the caller's profile or updates the existing one.
func (s *Service) UpsertProfile(ctx context.Context, uid primitive.ObjectID, in ProfileInput) (*model.Profile, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	// A token outlives its account; don't let it recreate an orphaned profile.
	if _, err := s.author(ctx, uid); err != nil {
		return nil, err
	}

	p, err := s.profiles.ByUser(ctx, uid)
	switch {
	case err == nil:
		in.applyTo(p)
		if err := s.profiles.Update(ctx, p); err != nil {
			return nil, saveErr(err, errNoProfile)
		}
	case errors.Is(err, store.ErrNotFound):
		p = &model.Profile{
			ID:         primitive.NewObjectID(),
			User:       uid,
			Experience: []model.Experience{},
			Education:  []model.Education{},
			Date:       s.now(),
		}
		in.applyTo(p)
		if err := s.profiles.Create(ctx, p); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				// Another request created it between our read and write.
				return nil, apperr.Conflict(err)
			}
			return nil, apperr.Internal(err)
		}
	default:
		return nil, apperr.Internal(err)
	}
	return s.populated(ctx, p)
}

// AddExperience prepends an experience entry to the caller's profile.
func (s *Service) AddExperience(ctx context.Context, uid primitive.ObjectID, in ExperienceInput) (*model.Profile, error) {
	var c checks
	c.require(present(in.Title), "title", "Title is Required")
	c.require(present(in.Company), "company", "Company is Required")
	from, to := period(&c, in.From, in.To, in.Current, true)
	if err := c.err(); err != nil {
		return nil, err
	}

	p, err := s.profileOf(ctx, uid)
	if err != nil {
		return nil, err
	}
	exp := model.Experience{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		From:        *from,
		To:          to,
		Current:     in.Current,
		Description: in.Description,
	}
	p.Experience = append([]model.Experience{exp}, p.Experience...)
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, saveErr(err, errNoProfile)
	}
	return s.populated(ctx, p)
}

// RemoveExperience deletes the experience entry with the given id.
func (s *Service) RemoveExperience(ctx context.Context, uid primitive.ObjectID, expHex string) (*model.Profile, error) {
	p, err := s.profileOf(ctx, uid)
	if err != nil {
		return nil, err
	}
	notFound := func() error { return apperr.NotFound(http.StatusNotFound, msgNoExperience) }
	id, err := parseID(expHex, notFound)
	if err != nil {
		return nil, err
	}
	i := p.ExperienceIndex(id)
	if i < 0 {
		return nil, notFound()
	}
	p.Experience = append(p.Experience[:i], p.Experience[i+1:]...)
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, saveErr(err, errNoProfile)
	}
	return s.populated(ctx, p)
}

// AddEducation prepends an education entry to the caller's profile.
func (s *Service) AddEducation(ctx context.Context, uid primitive.ObjectID, in EducationInput) (*model.Profile, error) {
	var c checks
	c.require(present(in.School), "school", "School is Required")
	c.require(present(in.Degree), "degree", "Degree is Required")
	c.require(present(in.FieldOfStudy), "fieldOfStudy", "Field of Study is Required")
	from, to := period(&c, in.From, in.To, in.Current, false)
	if err := c.err(); err != nil {
		return nil, err
	}

	p, err := s.profileOf(ctx, uid)
	if err != nil {
		return nil, err
	}
	edu := model.Education{
		ID:           primitive.NewObjectID(),
		School:       in.School,
		Degree:       in.Degree,
		FieldOfStudy: in.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      in.Current,
		Description:  in.Description,
	}
	p.Education = append([]model.Education{edu}, p.Education...)
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, saveErr(err, errNoProfile)
	}
	return s.populated(ctx, p)
}

// RemoveEducation deletes the education entry with the given id.
func (s *Service) RemoveEducation(ctx context.Context, uid primitive.ObjectID, eduHex string) (*model.Profile, error) {
	p, err := s.profileOf(ctx, uid)
	if err != nil {
		return nil, err
	}
	notFound := func() error { return apperr.NotFound(http.StatusNotFound, msgNoEducation) }
	id, err := parseID(eduHex, notFound)
	if err != nil {
		return nil, err
	}
	i := p.EducationIndex(id)
	if i < 0 {
		return nil, notFound()
	}
	p.Education = append(p.Education[:i], p.Education[i+1:]...)
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, saveErr(err, errNoProfile)
	}
	return s.populated(ctx, p)
}
