package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// UserMovie is a tracked title stored in MongoDB
type UserMovie struct {
	ID         primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserID     uint               `json:"-" bson:"user_id"`
	MovieID    int                `json:"movie_id" bson:"movie_id"`
	Title      string             `json:"title" bson:"title"`
	PosterPath string             `json:"poster_path,omitempty" bson:"poster_path,omitempty"`
	IsFavorite bool               `json:"-" bson:"is_favorite"`
	IsWatched  bool               `json:"-" bson:"is_watched"`
	UserRating *int               `json:"user_rating,omitempty" bson:"user_rating,omitempty"`
}

// MovieLists are the favorites and watched lists shown on a profile.
type MovieLists struct {
	Favorites []UserMovie `json:"favorite_movies"`
	Watched   []UserMovie `json:"watched_movies"`
}

// SplitMovieLists partitions a user's tracked titles into favorites and watched.
func SplitMovieLists(movies []UserMovie) MovieLists {
	lists := MovieLists{Favorites: []UserMovie{}, Watched: []UserMovie{}}
	for _, m := range movies {
		if m.IsFavorite {
			lists.Favorites = append(lists.Favorites, m)
		}
		if m.IsWatched {
			lists.Watched = append(lists.Watched, m)
		}
	}
	return lists
}
