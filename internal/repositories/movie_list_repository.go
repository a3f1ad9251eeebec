package repositories

import (
	"context"

	"github.com/anonto42/cinetrack/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MovieListRepository reads the titles a user tracks
type MovieListRepository interface {
	GetMovieLists(ctx context.Context, userID uint) (models.MovieLists, error)
}

// MongoMovieListRepository implements MovieListRepository for MongoDB
type MongoMovieListRepository struct {
	collection *mongo.Collection
}

// NewMongoMovieListRepository creates a new MongoMovieListRepository
func NewMongoMovieListRepository(db *mongo.Database) *MongoMovieListRepository {
	return &MongoMovieListRepository{collection: db.Collection("user_movies")}
}

// GetMovieLists returns the user's favorites and watched titles
func (r *MongoMovieListRepository) GetMovieLists(ctx context.Context, userID uint) (models.MovieLists, error) {
	var movies []models.UserMovie
	filter := bson.M{
		"user_id": userID,
		"$or":     bson.A{bson.M{"is_favorite": true}, bson.M{"is_watched": true}},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return models.MovieLists{}, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &movies); err != nil {
		return models.MovieLists{}, err
	}
	return models.SplitMovieLists(movies), nil
}
