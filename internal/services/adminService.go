package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/campus-connect/internal/apperr"
	"github.com/arzan03/campus-connect/internal/models"
)

// Analytics is the aggregate view served to the authority dashboard.
type Analytics struct {
	TotalIssues int64                     `json:"total_issues"`
	TotalUsers  int64                     `json:"total_users"`
	ByStatus    map[models.Status]int64   `json:"by_status"`
	ByCategory  map[models.Category]int64 `json:"by_category"`
}

// AdminService covers the authority-only management surface.
type AdminService struct {
	users  models.UserStore
	issues models.IssueStore
}

func NewAdminService(users models.UserStore, issues models.IssueStore) *AdminService {
	return &AdminService{users: users, issues: issues}
}

// GetAnalytics aggregates issue counts by status and category plus totals.
// Every enum value appears in the maps even when its count is zero.
func (s *AdminService) GetAnalytics(ctx context.Context) (Analytics, error) {
	byStatus, err := s.issues.CountByStatus(ctx)
	if err != nil {
		return Analytics{}, err
	}
	byCategory, err := s.issues.CountByCategory(ctx)
	if err != nil {
		return Analytics{}, err
	}
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return Analytics{}, err
	}

	var total int64
	for _, status := range models.Statuses {
		if _, ok := byStatus[status]; !ok {
			byStatus[status] = 0
		}
		total += byStatus[status]
	}
	for _, category := range models.Categories {
		if _, ok := byCategory[category]; !ok {
			byCategory[category] = 0
		}
	}

	return Analytics{
		TotalIssues: total,
		TotalUsers:  userCount,
		ByStatus:    byStatus,
		ByCategory:  byCategory,
	}, nil
}

// ListUsers returns all users, newest-first, credentials stripped.
func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// DeleteUser removes a user account.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.NotFound("User not found")
	}
	err = s.users.Delete(ctx, objID)
	if errors.Is(err, models.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	return err
}
