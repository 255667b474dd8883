package infrastructure

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roloApp/internal/modules/locations/application/port"
	"roloApp/internal/modules/locations/domain"
	"roloApp/internal/shared/apperrors"
)

const collectionName = "locations"

type MongoLocationRepository struct {
	collection *mongo.Collection
}

func NewMongoLocationRepository(db *mongo.Database) *MongoLocationRepository {
	return &MongoLocationRepository{collection: db.Collection(collectionName)}
}

func (r *MongoLocationRepository) Create(ctx context.Context, location *domain.Location) error {
	if _, err := r.collection.InsertOne(ctx, location); err != nil {
		return apperrors.Upstreamf(err, "insert location")
	}
	return nil
}

func (r *MongoLocationRepository) FindByID(ctx context.Context, id string) (*domain.Location, error) {
	var location domain.Location
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&location); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFoundf("location %s", id)
		}
		return nil, apperrors.Upstreamf(err, "find location %s", id)
	}
	return &location, nil
}

func (r *MongoLocationRepository) FindAll(ctx context.Context) ([]domain.Location, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperrors.Upstreamf(err, "list locations")
	}
	defer cursor.Close(ctx)

	var locations []domain.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, apperrors.Upstreamf(err, "decode locations")
	}
	return locations, nil
}

func (r *MongoLocationRepository) Update(ctx context.Context, location *domain.Location) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": location.ID}, location)
	if err != nil {
		return apperrors.Upstreamf(err, "update location %s", location.ID)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFoundf("location %s", location.ID)
	}
	return nil
}

func (r *MongoLocationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Upstreamf(err, "delete location %s", id)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFoundf("location %s", id)
	}
	return nil
}

var _ port.LocationRepository = (*MongoLocationRepository)(nil)
