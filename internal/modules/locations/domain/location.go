package domain

import (
	"strings"
	"time"
)

// Image is one stored attachment. PublicID is what the object-storage
// collaborator needs to destroy it later.
type Image struct {
	Src      string `bson:"src" json:"src"`
	PublicID string `bson:"publicId,omitempty" json:"-"`
	Width    int    `bson:"width" json:"width"`
	Height   int    `bson:"height" json:"height"`
}

type Comment struct {
	Author     string    `bson:"author" json:"author"`
	AuthorName string    `bson:"authorName" json:"authorName"`
	Content    string    `bson:"content" json:"content"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

type Location struct {
	ID            string    `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Description   string    `bson:"description" json:"description"`
	Latitude      float64   `bson:"latitude" json:"latitude"`
	Longitude     float64   `bson:"longitude" json:"longitude"`
	Address       string    `bson:"address,omitempty" json:"address,omitempty"`
	Sensations    []string  `bson:"sensations,omitempty" json:"sensations,omitempty"`
	Smells        []string  `bson:"smells,omitempty" json:"smells,omitempty"`
	Images        []Image   `bson:"images,omitempty" json:"images,omitempty"`
	CreatedBy     string    `bson:"createdBy" json:"createdBy"`
	CommentsCount int       `bson:"commentsCount" json:"commentsCount"`
	CommentsList  []Comment `bson:"commentsList,omitempty" json:"commentsList,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// AddComment appends the comment and bumps the counter.
func (l *Location) AddComment(authorID, authorName, content string, at time.Time) Comment {
	comment := Comment{
		Author:     authorID,
		AuthorName: strings.TrimSpace(authorName),
		Content:    strings.TrimSpace(content),
		CreatedAt:  at.UTC(),
	}
	l.CommentsList = append(l.CommentsList, comment)
	l.CommentsCount = len(l.CommentsList)
	return comment
}
