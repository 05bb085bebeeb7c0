package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arzan03/campus-connect/internal/models"
)

// IssueStore is the MongoDB-backed implementation of models.IssueStore.
type IssueStore struct {
	coll *mongo.Collection
}

func NewIssueStore(db *mongo.Database) *IssueStore {
	return &IssueStore{coll: db.Collection("issues")}
}

func (s *IssueStore) Create(ctx context.Context, issue models.Issue) (models.Issue, error) {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = now
	if issue.Comments == nil {
		issue.Comments = []models.Comment{}
	}
	_, err := s.coll.InsertOne(ctx, issue)
	if err != nil {
		return models.Issue{}, err
	}
	return issue, nil
}

func (s *IssueStore) GetByID(ctx context.Context, id primitive.ObjectID) (models.Issue, error) {
	var issue models.Issue
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Issue{}, models.ErrNotFound
	}
	return issue, err
}

func filterQuery(filter models.IssueFilter) bson.M {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Categories != nil {
		query["category"] = bson.M{"$in": filter.Categories}
	}
	if filter.Department != "" {
		query["department"] = filter.Department
	}
	if !filter.Reporter.IsZero() {
		query["reporter"] = filter.Reporter
	}
	return query
}

func (s *IssueStore) List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, filterQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (s *IssueStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.Status) (models.Issue, error) {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Issue{}, models.ErrNotFound
	}
	return issue, err
}

func (s *IssueStore) AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (models.Issue, error) {
	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Issue{}, models.ErrNotFound
	}
	return issue, err
}

func (s *IssueStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *IssueStore) CountByStatus(ctx context.Context) (map[models.Status]int64, error) {
	counts := map[models.Status]int64{}
	err := s.groupCounts(ctx, "$status", func(key string, n int64) {
		counts[models.Status(key)] = n
	})
	return counts, err
}

func (s *IssueStore) CountByCategory(ctx context.Context) (map[models.Category]int64, error) {
	counts := map[models.Category]int64{}
	err := s.groupCounts(ctx, "$category", func(key string, n int64) {
		counts[models.Category(key)] = n
	})
	return counts, err
}

func (s *IssueStore) groupCounts(ctx context.Context, field string, emit func(string, int64)) error {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": field, "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return err
	}
	for _, row := range rows {
		emit(row.ID, row.Count)
	}
	return nil
}
