package domain

import (
	"strings"
	"time"
)

// Comment is an embedded sub-document. AuthorName is denormalized at write
// time so feeds render without resolving the author.
type Comment struct {
	Author     string    `bson:"author" json:"author"`
	AuthorName string    `bson:"authorName" json:"authorName"`
	Content    string    `bson:"content" json:"content"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

type Post struct {
	ID           string    `bson:"_id" json:"id"`
	Title        string    `bson:"title" json:"title"`
	Content      string    `bson:"content" json:"content"`
	Image        string    `bson:"image,omitempty" json:"image,omitempty"`
	ImageID      string    `bson:"imageId,omitempty" json:"-"`
	Author       string    `bson:"author" json:"author"`
	AuthorName   string    `bson:"authorName" json:"authorName"`
	Location     string    `bson:"location,omitempty" json:"location,omitempty"`
	LocationName string    `bson:"locationName,omitempty" json:"locationName,omitempty"`
	Likes        int       `bson:"likes" json:"likes"`
	LikedBy      []string  `bson:"likedBy,omitempty" json:"likedBy,omitempty"`
	Comments     int       `bson:"comments" json:"comments"`
	CommentsList []Comment `bson:"commentsList,omitempty" json:"commentsList,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// LikedBy membership is checked permissively: a nil slice, an empty slice and
// a missing entry all count as "not liked".
func (p *Post) likedIndex(userID string) int {
	for i, id := range p.LikedBy {
		if id == userID {
			return i
		}
	}
	return -1
}

// ToggleLike flips the user's like and keeps the counter in step with the
// likedBy set. Two applications by the same user restore the original state.
// Returns true when the post ends up liked.
func (p *Post) ToggleLike(userID string) bool {
	if idx := p.likedIndex(userID); idx >= 0 {
		p.LikedBy = append(p.LikedBy[:idx], p.LikedBy[idx+1:]...)
		if p.Likes > 0 {
			p.Likes--
		}
		return false
	}
	p.LikedBy = append(p.LikedBy, userID)
	p.Likes++
	return true
}

// AddComment appends the comment and bumps the counter.
func (p *Post) AddComment(authorID, authorName, content string, at time.Time) Comment {
	comment := Comment{
		Author:     authorID,
		AuthorName: strings.TrimSpace(authorName),
		Content:    strings.TrimSpace(content),
		CreatedAt:  at.UTC(),
	}
	p.CommentsList = append(p.CommentsList, comment)
	p.Comments = len(p.CommentsList)
	return comment
}
