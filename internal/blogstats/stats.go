// Package blogstats computes aggregate figures over a list of posts.
package blogstats

import "github.com/ayush/bloglist/internal/models"

// TotalLikes sums the likes of all posts.
func TotalLikes(posts []models.Post) int {
	total := 0
	for _, p := range posts {
		total += p.Likes
	}
	return total
}

// Favorite returns the post with the most likes. Ties go to the earliest
// post; an empty list yields nil.
func Favorite(posts []models.Post) *models.Post {
	var fav *models.Post
	for i := range posts {
		if fav == nil || posts[i].Likes > fav.Likes {
			fav = &posts[i]
		}
	}
	return fav
}

// Summarize combines TotalLikes and Favorite.
func Summarize(posts []models.Post) models.Stats {
	return models.Stats{TotalLikes: TotalLikes(posts), Favorite: Favorite(posts)}
}
