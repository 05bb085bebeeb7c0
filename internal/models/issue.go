package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category classifies an issue's domain.
type Category string

const (
	CategoryMaintenance Category = "maintenance"
	CategoryCanteen     Category = "canteen"
	CategoryClassroom   Category = "classroom"
	CategoryHostel      Category = "hostel"
	CategoryTransport   Category = "transport"
	CategoryOther       Category = "other"
)

// Categories lists every valid category, in display order.
var Categories = []Category{
	CategoryMaintenance,
	CategoryCanteen,
	CategoryClassroom,
	CategoryHostel,
	CategoryTransport,
	CategoryOther,
}

// Status is an issue's triage state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
)

// Statuses lists every valid status. Any member-to-member transition is
// accepted; only membership is validated.
var Statuses = []Status{StatusPending, StatusInProgress, StatusResolved}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Comment is an embedded sub-document on an Issue. Comments are append-only
// and kept in chronological order.
type Comment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	IssueID    primitive.ObjectID `bson:"issue,omitempty" json:"issue,omitempty"`
	Author     primitive.ObjectID `bson:"author" json:"author"`
	AuthorName string             `bson:"author_name,omitempty" json:"author_name,omitempty"`
	Text       string             `bson:"text" json:"text"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// NewComment builds a comment for the given author, rejecting empty or
// whitespace-only text and stamping the current time.
func NewComment(author *User, text string) (Comment, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, false
	}
	return Comment{
		ID:         primitive.NewObjectID(),
		Author:     author.ID,
		AuthorName: author.Name,
		Text:       text,
		CreatedAt:  time.Now(),
	}, true
}

type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    Category           `bson:"category" json:"category"`
	Status      Status             `bson:"status" json:"status"`
	Reporter    primitive.ObjectID `bson:"reporter" json:"reporter"`
	Department  string             `bson:"department,omitempty" json:"department,omitempty"`
	ImageURL    string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Comments    []Comment          `bson:"comments" json:"comments"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// IssueFilter is an immutable set of equality criteria for listing issues.
// Zero-value fields are ignored. Categories, when non-nil, restricts results
// to the given set; an empty non-nil slice matches nothing.
type IssueFilter struct {
	Status     Status
	Categories []Category
	Department string
	Reporter   primitive.ObjectID
}
