// internal/store/mongostore/mongostore.go
//
// MongoDB implementation of store.Store.
// Collections: users (unique email), profiles (unique user), posts (date desc).
// Updates replace the whole document, filtered on {_id, __v}, so a write
// based on a stale read matches nothing and is reported as store.ErrConflict.

package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/robalobadob/connect2pros/internal/model"
	"github.com/robalobadob/connect2pros/internal/store"
)

const connectTimeout = 10 * time.Second

// Store wraps a connected client and the application database.
type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	profiles *mongo.Collection
	posts    *mongo.Collection
}

// Connect dials uri, pings the primary and makes sure indexes exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		users:    db.Collection("users"),
		profiles: db.Collection("profiles"),
		posts:    db.Collection("posts"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Info().Str("database", database).Msg("connected to MongoDB")
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	idx := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.profiles, mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.posts, mongo.IndexModel{Keys: bson.D{{Key: "date", Value: -1}}}},
		{s.posts, mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}}}},
	}
	for _, i := range idx {
		if _, err := i.coll.Indexes().CreateOne(ctx, i.model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) Users() store.Users       { return users{s.users} }
func (s *Store) Profiles() store.Profiles { return profiles{s.profiles} }
func (s *Store) Posts() store.Posts       { return posts{s.posts} }

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	default:
		return err
	}
}

// replaceVersioned swaps the document with _id=id and __v=version for doc.
func replaceVersioned(ctx context.Context, c *mongo.Collection, id primitive.ObjectID, version int64, doc any) error {
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id, "__v": version}, doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := c.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return store.ErrConflict
}

// ------------------------------- users -------------------------------------

type users struct{ c *mongo.Collection }

func (r users) Create(ctx context.Context, u *model.User) error {
	_, err := r.c.InsertOne(ctx, u)
	return translate(err)
}

func (r users) ByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var u model.User
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r users) ByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.c.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r users) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ------------------------------ profiles -----------------------------------

type profiles struct{ c *mongo.Collection }

func (r profiles) Create(ctx context.Context, p *model.Profile) error {
	_, err := r.c.InsertOne(ctx, p)
	return translate(err)
}

func (r profiles) ByUser(ctx context.Context, user primitive.ObjectID) (*model.Profile, error) {
	var p model.Profile
	if err := r.c.FindOne(ctx, bson.M{"user": user}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	p.Normalize()
	return &p, nil
}

func (r profiles) List(ctx context.Context) ([]*model.Profile, error) {
	cur, err := r.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []*model.Profile{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for _, p := range out {
		p.Normalize()
	}
	return out, nil
}

func (r profiles) Update(ctx context.Context, p *model.Profile) error {
	next := p.Clone()
	next.Version++
	if err := replaceVersioned(ctx, r.c, p.ID, p.Version, next); err != nil {
		return err
	}
	p.Version = next.Version
	return nil
}

func (r profiles) DeleteByUser(ctx context.Context, user primitive.ObjectID) error {
	_, err := r.c.DeleteOne(ctx, bson.M{"user": user})
	return translate(err)
}

// -------------------------------- posts ------------------------------------

type posts struct{ c *mongo.Collection }

func (r posts) Create(ctx context.Context, p *model.Post) error {
	_, err := r.c.InsertOne(ctx, p)
	return translate(err)
}

func (r posts) ByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	var p model.Post
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	p.Normalize()
	return &p, nil
}

func (r posts) List(ctx context.Context) ([]*model.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	out := []*model.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for _, p := range out {
		p.Normalize()
	}
	return out, nil
}

func (r posts) Update(ctx context.Context, p *model.Post) error {
	next := p.Clone()
	next.Version++
	if err := replaceVersioned(ctx, r.c, p.ID, p.Version, next); err != nil {
		return err
	}
	p.Version = next.Version
	return nil
}

func (r posts) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r posts) DeleteByUser(ctx context.Context, user primitive.ObjectID) (int64, error) {
	res, err := r.c.DeleteMany(ctx, bson.M{"user": user})
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}
