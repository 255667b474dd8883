package infrastructure

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roloApp/internal/modules/posts/application/port"
	"roloApp/internal/modules/posts/domain"
	"roloApp/internal/shared/apperrors"
)

const collectionName = "posts"

type MongoPostRepository struct {
	collection *mongo.Collection
}

func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection(collectionName)}
}

func (r *MongoPostRepository) Create(ctx context.Context, post *domain.Post) error {
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return apperrors.Upstreamf(err, "insert post")
	}
	return nil
}

func (r *MongoPostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFoundf("post %s", id)
		}
		return nil, apperrors.Upstreamf(err, "find post %s", id)
	}
	return &post, nil
}

func (r *MongoPostRepository) FindAll(ctx context.Context) ([]domain.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperrors.Upstreamf(err, "list posts")
	}
	defer cursor.Close(ctx)

	var posts []domain.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, apperrors.Upstreamf(err, "decode posts")
	}
	return posts, nil
}

func (r *MongoPostRepository) Update(ctx context.Context, post *domain.Post) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": post.ID}, post)
	if err != nil {
		return apperrors.Upstreamf(err, "update post %s", post.ID)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFoundf("post %s", post.ID)
	}
	return nil
}

func (r *MongoPostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Upstreamf(err, "delete post %s", id)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFoundf("post %s", id)
	}
	return nil
}

var _ port.PostRepository = (*MongoPostRepository)(nil)
