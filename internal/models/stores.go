package models

import (
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned by every store when the requested record does not
// exist. Services translate it into the domain error taxonomy.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned on unique-constraint violations (email).
var ErrDuplicate = errors.New("duplicate")

type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, user User) (User, error)
	List(ctx context.Context) ([]User, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type OTPStore interface {
	// Put replaces any live OTP records for the email with the given one.
	Put(ctx context.Context, otp OTP) error
	// Consume atomically fetches and deletes the record matching email and
	// code. ErrNotFound covers wrong code, expired and absent alike.
	Consume(ctx context.Context, email, code string) (OTP, error)
}

type IssueStore interface {
	Create(ctx context.Context, issue Issue) (Issue, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (Issue, error)
	// List returns issues matching the filter, newest-first.
	List(ctx context.Context, filter IssueFilter) ([]Issue, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status) (Issue, error)
	AppendComment(ctx context.Context, id primitive.ObjectID, comment Comment) (Issue, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	CountByCategory(ctx context.Context) (map[Category]int64, error)
}

// CommentStore backs the legacy standalone comments collection kept for old
// clients. The primary flow embeds comments on the issue instead.
type CommentStore interface {
	ListByIssue(ctx context.Context, issueID primitive.ObjectID) ([]Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ImageStore persists uploaded issue images.
type ImageStore interface {
	Save(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, objectName string) (io.ReadCloser, string, error)
	Remove(ctx context.Context, objectName string) error
}
