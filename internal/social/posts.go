package social

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/robalobadob/connect2pros/internal/apperr"
	"github.com/robalobadob/connect2pros/internal/model"
)

// TextInput is the body of POST /api/posts and POST /api/posts/comment/{id}.
type TextInput struct {
	Text string `json:"text"`
}

func (in TextInput) validate() error {
	var c checks
	c.require(present(in.Text), "text", "Text: Required")
	return c.err()
}

func (s *Service) author(ctx context.Context, uid primitive.ObjectID) (*model.User, error) {
	u, err := s.users.ByID(ctx, uid)
	if err != nil {
		return nil, lookupErr(err, errUserNotFound)
	}
	return u, nil
}

func (s *Service) loadPost(ctx context.Context, postHex string) (*model.Post, error) {
	id, err := parseID(postHex, errPostNotFound)
	if err != nil {
		return nil, err
	}
	p, err := s.posts.ByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errPostNotFound)
	}
	return p, nil
}

// CreatePost publishes a post. The author's current name and avatar are
// copied onto it and not updated later.
func (s *Service) CreatePost(ctx context.Context, uid primitive.ObjectID, in TextInput) (*model.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	u, err := s.author(ctx, uid)
	if err != nil {
		return nil, err
	}
	p := &model.Post{
		ID:       primitive.NewObjectID(),
		User:     uid,
		Text:     in.Text,
		Name:     u.Name,
		Avatar:   u.Avatar,
		Likes:    []model.Like{},
		Comments: []model.Comment{},
		Date:     s.now(),
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

// ListPosts returns all posts, newest first.
func (s *Service) ListPosts(ctx context.Context) ([]*model.Post, error) {
	list, err := s.posts.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

// GetPost returns one post. A malformed id is reported as not found.
func (s *Service) GetPost(ctx context.Context, postHex string) (*model.Post, error) {
	return s.loadPost(ctx, postHex)
}

// DeletePost removes a post owned by uid.
func (s *Service) DeletePost(ctx context.Context, uid primitive.ObjectID, postHex string) error {
	p, err := s.loadPost(ctx, postHex)
	if err != nil {
		return err
	}
	if !p.OwnedBy(uid) {
		return apperr.Unauthorized(msgNotOwner)
	}
	if err := s.posts.Delete(ctx, p.ID); err != nil {
		return lookupErr(err, errPostNotFound)
	}
	return nil
}

// Like adds uid to the post's likes and returns the updated list.
func (s *Service) Like(ctx context.Context, uid primitive.ObjectID, postHex string) ([]model.Like, error) {
	p, err := s.loadPost(ctx, postHex)
	if err != nil {
		return nil, err
	}
	if p.LikeIndex(uid) >= 0 {
		return nil, apperr.AlreadyLiked(msgAlreadyLiked)
	}
	p.Likes = append([]model.Like{{User: uid}}, p.Likes...)
	if err := s.posts.Update(ctx, p); err != nil {
		return nil, saveErr(err, errPostNotFound)
	}
	return p.Likes, nil
}

// Unlike removes uid's like and returns the updated list.
func (s *Service) Unlike(ctx context.Context, uid primitive.ObjectID, postHex string) ([]model.Like, error) {
	p, err := s.loadPost(ctx, postHex)
	if err != nil {
		return nil, err
	}
	i := p.LikeIndex(uid)
	if i < 0 {
		return nil, apperr.NotYetLiked(msgNotYetLiked)
	}
	p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
	if err := s.posts.Update(ctx, p); err != nil {
		return nil, saveErr(err, errPostNotFound)
	}
	return p.Likes, nil
}

// AddComment prepends a comment by uid and returns the post's comments.
func (s *Service) AddComment(ctx context.Context, uid primitive.ObjectID, postHex string, in TextInput) ([]model.Comment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	u, err := s.author(ctx, uid)
	if err != nil {
		return nil, err
	}
	p, err := s.loadPost(ctx, postHex)
	if err != nil {
		return nil, err
	}
	c := model.Comment{
		ID:     primitive.NewObjectID(),
		User:   uid,
		Text:   in.Text,
		Name:   u.Name,
		Avatar: u.Avatar,
		Date:   s.now(),
	}
	p.Comments = append([]model.Comment{c}, p.Comments...)
	if err := s.posts.Update(ctx, p); err != nil {
		return nil, saveErr(err, errPostNotFound)
	}
	return p.Comments, nil
}

// DeleteComment removes the comment identified by commentHex. The comment is
// located by its own id and then its author is compared with uid; the post
// owner gets no special rights over other people's comments.
func (s *Service) DeleteComment(ctx context.Context, uid primitive.ObjectID, postHex, commentHex string) error {
	p, err := s.loadPost(ctx, postHex)
	if err != nil {
		return err
	}
	noComment := func() error { return apperr.NotFound(http.StatusNotFound, msgNoComment) }
	cid, err := parseID(commentHex, noComment)
	if err != nil {
		return err
	}
	i := p.CommentIndex(cid)
	if i < 0 {
		return noComment()
	}
	if p.Comments[i].User != uid {
		return apperr.Unauthorized(msgNotOwner)
	}
	p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
	if err := s.posts.Update(ctx, p); err != nil {
		return saveErr(err, errPostNotFound)
	}
	return nil
}
