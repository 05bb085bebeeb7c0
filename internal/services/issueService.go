package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/campus-connect/internal/apperr"
	"github.com/arzan03/campus-connect/internal/models"
)

// UserSummary is the public slice of a user embedded in issue responses.
type UserSummary struct {
	ID         primitive.ObjectID `json:"id"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Role       models.Role        `json:"role"`
	Department string             `json:"department,omitempty"`
}

// IssueView is an issue with its reporter populated. The embedded reporter
// object shadows the raw reporter ObjectID of models.Issue in JSON.
type IssueView struct {
	models.Issue
	Reporter *UserSummary `json:"reporter"`
}

// IssueService owns issue CRUD and the category-based visibility rules for
// authority users.
type IssueService struct {
	issues   models.IssueStore
	users    models.UserStore
	comments models.CommentStore
	images   models.ImageStore
}

func NewIssueService(issues models.IssueStore, users models.UserStore, comments models.CommentStore, images models.ImageStore) *IssueService {
	return &IssueService{issues: issues, users: users, comments: comments, images: images}
}

// CreateIssueInput is the payload for creating an issue. ImageURL is set by
// the handler after a successful upload.
type CreateIssueInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    models.Category `json:"category"`
	Department  string          `json:"department"`
	ImageURL    string          `json:"-"`
}

// Create stores a new issue for the reporter. Department defaults to the
// reporter's; status always starts pending.
func (s *IssueService) Create(ctx context.Context, reporter models.User, in CreateIssueInput) (IssueView, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || in.Description == "" || in.Category == "" {
		return IssueView{}, apperr.Validation("Title, description and category are required")
	}
	if !in.Category.Valid() {
		return IssueView{}, apperr.Validation("Invalid category: " + string(in.Category))
	}

	department := strings.TrimSpace(in.Department)
	if department == "" {
		department = reporter.Department
	}

	issue, err := s.issues.Create(ctx, models.Issue{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Status:      models.StatusPending,
		Reporter:    reporter.ID,
		Department:  department,
		ImageURL:    in.ImageURL,
	})
	if err != nil {
		return IssueView{}, err
	}
	return withReporter(issue, reporter), nil
}

// ListFilters are the optional equality filters accepted by List.
type ListFilters struct {
	Status     models.Status
	Category   models.Category
	Department string
}

// List returns issues visible to the user, newest-first. For authorities the
// category filter is intersected with their assigned categories: an
// authority with no categories, or filtering outside them, sees nothing by
// construction rather than by error.
func (s *IssueService) List(ctx context.Context, user models.User, filters ListFilters) ([]IssueView, error) {
	filter := models.IssueFilter{
		Status:     filters.Status,
		Department: filters.Department,
	}

	if user.Role == models.RoleAuthority {
		if len(user.Categories) == 0 {
			return []IssueView{}, nil
		}
		if filters.Category != "" {
			if !user.HandlesCategory(filters.Category) {
				return []IssueView{}, nil
			}
			filter.Categories = []models.Category{filters.Category}
		} else {
			filter.Categories = user.Categories
		}
	} else if filters.Category != "" {
		filter.Categories = []models.Category{filters.Category}
	}

	issues, err := s.issues.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, issues)
}

// ListMine returns the user's own issues, newest-first. Reporters always see
// their own issues regardless of category.
func (s *IssueService) ListMine(ctx context.Context, user models.User) ([]IssueView, error) {
	issues, err := s.issues.List(ctx, models.IssueFilter{Reporter: user.ID})
	if err != nil {
		return nil, err
	}
	views := make([]IssueView, 0, len(issues))
	for _, issue := range issues {
		views = append(views, withReporter(issue, user))
	}
	return views, nil
}

// Get fetches a single issue with its reporter populated.
func (s *IssueService) Get(ctx context.Context, id string) (IssueView, error) {
	objID, err := parseIssueID(id)
	if err != nil {
		return IssueView{}, err
	}
	issue, err := s.issues.GetByID(ctx, objID)
	if errors.Is(err, models.ErrNotFound) {
		return IssueView{}, apperr.NotFound("Issue not found")
	}
	if err != nil {
		return IssueView{}, err
	}
	return s.populateOne(ctx, issue), nil
}

// UpdateStatus sets a new status. Authorities may only touch issues whose
// category they are assigned; this check is separate from the route-level
// role gate.
func (s *IssueService) UpdateStatus(ctx context.Context, user models.User, id string, status models.Status) (IssueView, error) {
	objID, err := parseIssueID(id)
	if err != nil {
		return IssueView{}, err
	}
	if !status.Valid() {
		return IssueView{}, apperr.Validation("Invalid status: " + string(status))
	}

	issue, err := s.issues.GetByID(ctx, objID)
	if errors.Is(err, models.ErrNotFound) {
		return IssueView{}, apperr.NotFound("Issue not found")
	}
	if err != nil {
		return IssueView{}, err
	}
	if user.Role == models.RoleAuthority && !user.HandlesCategory(issue.Category) {
		return IssueView{}, apperr.Forbidden("Issue is outside your assigned categories")
	}

	updated, err := s.issues.UpdateStatus(ctx, objID, status)
	if errors.Is(err, models.ErrNotFound) {
		return IssueView{}, apperr.NotFound("Issue not found")
	}
	if err != nil {
		return IssueView{}, err
	}
	return s.populateOne(ctx, updated), nil
}

// AddComment appends a comment and returns the whole updated issue so the
// client can refresh full state. Any authenticated user may comment.
func (s *IssueService) AddComment(ctx context.Context, user models.User, id, text string) (IssueView, error) {
	objID, err := parseIssueID(id)
	if err != nil {
		return IssueView{}, err
	}
	comment, ok := models.NewComment(&user, text)
	if !ok {
		return IssueView{}, apperr.Validation("Comment text is required")
	}

	issue, err := s.issues.AppendComment(ctx, objID, comment)
	if errors.Is(err, models.ErrNotFound) {
		return IssueView{}, apperr.NotFound("Issue not found")
	}
	if err != nil {
		return IssueView{}, err
	}
	return s.populateOne(ctx, issue), nil
}

// Delete removes an issue. Route-gated to the authority role; there is no
// category check here, any authority may delete any issue.
func (s *IssueService) Delete(ctx context.Context, id string) error {
	objID, err := parseIssueID(id)
	if err != nil {
		return err
	}

	issue, err := s.issues.GetByID(ctx, objID)
	if errors.Is(err, models.ErrNotFound) {
		return apperr.NotFound("Issue not found")
	}
	if err != nil {
		return err
	}

	if err := s.issues.Delete(ctx, objID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return apperr.NotFound("Issue not found")
		}
		return err
	}

	// Image cleanup is best-effort; a stale object must not fail the delete.
	if object := objectFromImageURL(issue.ImageURL); object != "" && s.images != nil {
		go func() {
			if err := s.images.Remove(context.Background(), object); err != nil {
				log.Warn().Err(err).Str("object", object).Msg("failed to remove issue image")
			}
		}()
	}
	return nil
}

// LegacyComments lists the standalone comments collection for an issue. Old
// clients still read this sub-resource; the primary flow embeds comments.
func (s *IssueService) LegacyComments(ctx context.Context, issueID string) ([]models.Comment, error) {
	objID, err := parseIssueID(issueID)
	if err != nil {
		return nil, err
	}
	if _, err := s.issues.GetByID(ctx, objID); errors.Is(err, models.ErrNotFound) {
		return nil, apperr.NotFound("Issue not found")
	} else if err != nil {
		return nil, err
	}
	return s.comments.ListByIssue(ctx, objID)
}

// DeleteLegacyComment removes a comment from the standalone collection.
func (s *IssueService) DeleteLegacyComment(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.NotFound("Comment not found")
	}
	err = s.comments.Delete(ctx, objID)
	if errors.Is(err, models.ErrNotFound) {
		return apperr.NotFound("Comment not found")
	}
	return err
}

func parseIssueID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("Issue not found")
	}
	return objID, nil
}

// objectFromImageURL extracts the storage object name from a stored
// server-relative image path.
func objectFromImageURL(url string) string {
	const prefix = "/uploads/issue-images/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

func withReporter(issue models.Issue, reporter models.User) IssueView {
	return IssueView{
		Issue: issue,
		Reporter: &UserSummary{
			ID:         reporter.ID,
			Name:       reporter.Name,
			Email:      reporter.Email,
			Role:       reporter.Role,
			Department: reporter.Department,
		},
	}
}

// populate resolves reporter references for a batch of issues with one user
// lookup per distinct reporter.
func (s *IssueService) populate(ctx context.Context, issues []models.Issue) ([]IssueView, error) {
	reporters := map[primitive.ObjectID]models.User{}
	views := make([]IssueView, 0, len(issues))

	for _, issue := range issues {
		reporter, ok := reporters[issue.Reporter]
		if !ok {
			user, err := s.users.GetByID(ctx, issue.Reporter)
			if err != nil && !errors.Is(err, models.ErrNotFound) {
				return nil, err
			}
			reporter = user
			reporters[issue.Reporter] = reporter
		}
		views = append(views, withReporter(issue, reporter))
	}
	return views, nil
}

func (s *IssueService) populateOne(ctx context.Context, issue models.Issue) IssueView {
	reporter, err := s.users.GetByID(ctx, issue.Reporter)
	if err != nil {
		// Reporter may have been deleted; serve the issue anyway.
		return IssueView{Issue: issue, Reporter: nil}
	}
	return withReporter(issue, reporter)
}
