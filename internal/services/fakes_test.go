package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/campus-connect/internal/models"
)

// In-memory store fakes mirroring the behavior of the MongoDB
// implementations closely enough for service-level tests.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]models.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return models.User{}, models.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (s *fakeUserStore) Update(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.ID]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	stored.Name = user.Name
	stored.Department = user.Department
	stored.Categories = user.Categories
	s.users[user.ID] = stored
	return stored, nil
}

func (s *fakeUserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *fakeUserStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *fakeUserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type fakeOTPStore struct {
	mu   sync.Mutex
	otps map[string]models.OTP // keyed by email
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{otps: map[string]models.OTP{}}
}

func (s *fakeOTPStore) Put(_ context.Context, otp models.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if otp.ID.IsZero() {
		otp.ID = primitive.NewObjectID()
	}
	s.otps[otp.Email] = otp
	return nil
}

func (s *fakeOTPStore) Consume(_ context.Context, email, code string) (models.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	otp, ok := s.otps[email]
	if !ok || otp.Code != code {
		return models.OTP{}, models.ErrNotFound
	}
	delete(s.otps, email)
	return otp, nil
}

type fakeIssueStore struct {
	mu     sync.Mutex
	issues map[primitive.ObjectID]models.Issue
	clock  time.Time
}

func newFakeIssueStore() *fakeIssueStore {
	return &fakeIssueStore{
		issues: map[primitive.ObjectID]models.Issue{},
		clock:  time.Now(),
	}
}

func (s *fakeIssueStore) Create(_ context.Context, issue models.Issue) (models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	// Monotonic creation times keep newest-first ordering deterministic.
	s.clock = s.clock.Add(time.Second)
	issue.CreatedAt = s.clock
	issue.UpdatedAt = s.clock
	if issue.Comments == nil {
		issue.Comments = []models.Comment{}
	}
	s.issues[issue.ID] = issue
	return issue, nil
}

func (s *fakeIssueStore) GetByID(_ context.Context, id primitive.ObjectID) (models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return models.Issue{}, models.ErrNotFound
	}
	return issue, nil
}

func matchesFilter(issue models.Issue, filter models.IssueFilter) bool {
	if filter.Status != "" && issue.Status != filter.Status {
		return false
	}
	if filter.Department != "" && issue.Department != filter.Department {
		return false
	}
	if !filter.Reporter.IsZero() && issue.Reporter != filter.Reporter {
		return false
	}
	if filter.Categories != nil {
		found := false
		for _, c := range filter.Categories {
			if issue.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *fakeIssueStore) List(_ context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []models.Issue{}
	for _, issue := range s.issues {
		if matchesFilter(issue, filter) {
			matched = append(matched, issue)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return matched, nil
}

func (s *fakeIssueStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.Status) (models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return models.Issue{}, models.ErrNotFound
	}
	issue.Status = status
	issue.UpdatedAt = time.Now()
	s.issues[id] = issue
	return issue, nil
}

func (s *fakeIssueStore) AppendComment(_ context.Context, id primitive.ObjectID, comment models.Comment) (models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return models.Issue{}, models.ErrNotFound
	}
	issue.Comments = append(issue.Comments, comment)
	issue.UpdatedAt = time.Now()
	s.issues[id] = issue
	return issue, nil
}

func (s *fakeIssueStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.issues[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.issues, id)
	return nil
}

func (s *fakeIssueStore) CountByStatus(_ context.Context) (map[models.Status]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[models.Status]int64{}
	for _, issue := range s.issues {
		counts[issue.Status]++
	}
	return counts, nil
}

func (s *fakeIssueStore) CountByCategory(_ context.Context) (map[models.Category]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[models.Category]int64{}
	for _, issue := range s.issues {
		counts[issue.Category]++
	}
	return counts, nil
}

type fakeCommentStore struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]models.Comment
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: map[primitive.ObjectID]models.Comment{}}
}

func (s *fakeCommentStore) ListByIssue(_ context.Context, issueID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []models.Comment{}
	for _, c := range s.comments {
		if c.IssueID == issueID {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	return matched, nil
}

func (s *fakeCommentStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}
