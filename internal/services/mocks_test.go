package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

// mockRepository is an in-memory Repository covering the tables the service
// tests touch. Sub-repositories not used by any test return nil.
type mockRepository struct {
	mu sync.Mutex

	users            map[uint]*models.User
	messages         map[uint]*models.Message
	questions        map[uint]*models.Question
	answers          map[uint]*models.Answer
	privateMessages  map[uint]*models.PrivateMessage
	announcements    map[uint]*models.Announcement
	staffMessages    map[uint]*models.StaffMessage
	readMessages     map[string]*models.ReadMessage
	reviews          map[string]*models.Review
	adminRequests    map[uint]*models.AdminRequest
	reviewerRequests map[uint]*models.ReviewerRequest
	otps             map[uint]*models.OneTimePassword
	invites          map[uint]*models.Invite
	auditLogs        []*models.AuditLog

	nextID uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:            make(map[uint]*models.User),
		messages:         make(map[uint]*models.Message),
		questions:        make(map[uint]*models.Question),
		answers:          make(map[uint]*models.Answer),
		privateMessages:  make(map[uint]*models.PrivateMessage),
		announcements:    make(map[uint]*models.Announcement),
		staffMessages:    make(map[uint]*models.StaffMessage),
		readMessages:     make(map[string]*models.ReadMessage),
		reviews:          make(map[string]*models.Review),
		adminRequests:    make(map[uint]*models.AdminRequest),
		reviewerRequests: make(map[uint]*models.ReviewerRequest),
		otps:             make(map[uint]*models.OneTimePassword),
		invites:          make(map[uint]*models.Invite),
	}
}

func (m *mockRepository) nextIdentity() uint {
	m.nextID++
	return m.nextID
}

func reviewKey(reviewerID, userID uint) string {
	return fmt.Sprintf("%d:%d", reviewerID, userID)
}

func (m *mockRepository) addUser(user *models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == 0 {
		user.ID = m.nextIdentity()
	}
	m.users[user.ID] = user
	return user
}

// ===== aggregate =====

func (m *mockRepository) User() repositories.UserRepository         { return &mockUserRepo{m} }
func (m *mockRepository) Message() repositories.MessageRepository   { return &mockMessageRepo{m} }
func (m *mockRepository) Question() repositories.QuestionRepository { return &mockQuestionRepo{m} }
func (m *mockRepository) Answer() repositories.AnswerRepository     { return &mockAnswerRepo{m} }
func (m *mockRepository) PrivateMessage() repositories.PrivateMessageRepository {
	return &mockPrivateMessageRepo{m}
}
func (m *mockRepository) Announcement() repositories.AnnouncementRepository {
	return &mockAnnouncementRepo{m}
}
func (m *mockRepository) StaffMessage() repositories.StaffMessageRepository {
	return &mockStaffMessageRepo{m}
}
func (m *mockRepository) ReadMessage() repositories.ReadMessageRepository {
	return &mockReadMessageRepo{m}
}
func (m *mockRepository) AdminRequest() repositories.AdminRequestRepository {
	return &mockAdminRequestRepo{m}
}
func (m *mockRepository) ReviewerRequest() repositories.ReviewerRequestRepository {
	return &mockReviewerRequestRepo{m}
}
func (m *mockRepository) Review() repositories.ReviewRepository { return &mockReviewRepo{m} }
func (m *mockRepository) Invite() repositories.InviteRepository { return &mockInviteRepo{m} }
func (m *mockRepository) OneTimePassword() repositories.OneTimePasswordRepository {
	return &mockOTPRepo{m}
}
func (m *mockRepository) AuditLog() repositories.AuditLogRepository { return &mockAuditRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== users =====

type mockUserRepo struct{ m *mockRepository }

func (r *mockUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.m.addUser(user)
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *mockUserRepo) GetByUserName(ctx context.Context, tx *gorm.DB, userName string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, user := range r.m.users {
		if user.UserName == userName {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, user := range r.m.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.User, 0, len(r.m.users))
	for _, user := range r.m.users {
		clone := *user
		out = append(out, &clone)
	}
	return out, nil
}

func (r *mockUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.User
	for _, user := range r.m.users {
		if filters.Role != nil && !user.Roles.Has(*filters.Role) {
			continue
		}
		if filters.Query != "" && !strings.Contains(user.UserName, filters.Query) {
			continue
		}
		clone := *user
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *mockUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	clone := *user
	r.m.users[user.ID] = &clone
	return nil
}

func (r *mockUserRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.users, id)
	return nil
}

func (r *mockUserRepo) CountWithRole(ctx context.Context, tx *gorm.DB, role models.Role) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var count int64
	for _, user := range r.m.users {
		if user.Roles.Has(role) {
			count++
		}
	}
	return count, nil
}

// ===== messages =====

type mockMessageRepo struct{ m *mockRepository }

func (r *mockMessageRepo) Create(ctx context.Context, tx *gorm.DB, msg *models.Message) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if msg.ID == 0 {
		msg.ID = r.m.nextIdentity()
	}
	clone := *msg
	r.m.messages[msg.ID] = &clone
	return nil
}

func (r *mockMessageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Message, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	msg, ok := r.m.messages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *msg
	return &clone, nil
}

func (r *mockMessageRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*models.Message, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Message, 0, len(r.m.messages))
	for _, msg := range r.m.messages {
		clone := *msg
		out = append(out, &clone)
	}
	return out, nil
}

func (r *mockMessageRepo) Update(ctx context.Context, tx *gorm.DB, msg *models.Message) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.messages[msg.ID]; !ok {
		return repositories.ErrNotFound
	}
	clone := *msg
	r.m.messages[msg.ID] = &clone
	return nil
}

// Delete mimics the schema cascade: rows owning the message go with it.
func (r *mockMessageRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.messages[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.messages, id)
	for qid, q := range r.m.questions {
		if q.MessageID == id {
			delete(r.m.questions, qid)
		}
	}
	for aid, a := range r.m.answers {
		if a.MessageID == id {
			delete(r.m.answers, aid)
		}
	}
	for pid, pm := range r.m.privateMessages {
		if pm.MessageID == id {
			delete(r.m.privateMessages, pid)
		}
	}
	return nil
}

// ===== questions =====

type mockQuestionRepo struct{ m *mockRepository }

func (r *mockQuestionRepo) Create(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if q.ID == 0 {
		q.ID = r.m.nextIdentity()
	}
	clone := *q
	r.m.questions[q.ID] = &clone
	return nil
}

func (r *mockQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	q, ok := r.m.questions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *q
	return &clone, nil
}

func (r *mockQuestionRepo) GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	q, ok := r.m.questions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *q
	for _, a := range r.m.answers {
		if a.QuestionID != nil && *a.QuestionID == id {
			clone.Answers = append(clone.Answers, *a)
		}
	}
	return &clone, nil
}

func (r *mockQuestionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Question
	for _, q := range r.m.questions {
		if filters.UserID != nil && q.Message.UserID != *filters.UserID {
			continue
		}
		if filters.Resolved != nil && q.IsResolved != *filters.Resolved {
			continue
		}
		clone := *q
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *mockQuestionRepo) Update(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.questions[q.ID]; !ok {
		return repositories.ErrNotFound
	}
	clone := *q
	r.m.questions[q.ID] = &clone
	return nil
}

func (r *mockQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.questions, id)
	return nil
}

// ===== answers =====

type mockAnswerRepo struct{ m *mockRepository }

func (r *mockAnswerRepo) Create(ctx context.Context, tx *gorm.DB, a *models.Answer) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if a.ID == 0 {
		a.ID = r.m.nextIdentity()
	}
	clone := *a
	r.m.answers[a.ID] = &clone
	return nil
}

func (r *mockAnswerRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.answers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *mockAnswerRepo) GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Answer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Answer
	for _, a := range r.m.answers {
		if a.QuestionID != nil && *a.QuestionID == questionID {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *mockAnswerRepo) Update(ctx context.Context, tx *gorm.DB, a *models.Answer) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.answers[a.ID]; !ok {
		return repositories.ErrNotFound
	}
	clone := *a
	r.m.answers[a.ID] = &clone
	return nil
}

func (r *mockAnswerRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.answers, id)
	return nil
}

func (r *mockAnswerRepo) UnpinAllForQuestion(ctx context.Context, tx *gorm.DB, questionID uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.answers {
		if a.QuestionID != nil && *a.QuestionID == questionID {
			a.IsPinned = false
		}
	}
	return nil
}

func (r *mockAnswerRepo) SetPinned(ctx context.Context, tx *gorm.DB, answerID uint, pinned bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.answers[answerID]
	if !ok {
		return repositories.ErrNotFound
	}
	a.IsPinned = pinned
	return nil
}

// ===== private messages =====

type mockPrivateMessageRepo struct{ m *mockRepository }

func (r *mockPrivateMessageRepo) Create(ctx context.Context, tx *gorm.DB, pm *models.PrivateMessage) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if pm.ID == 0 {
		pm.ID = r.m.nextIdentity()
	}
	clone := *pm
	r.m.privateMessages[pm.ID] = &clone
	return nil
}

func (r *mockPrivateMessageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PrivateMessage, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	pm, ok := r.m.privateMessages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *pm
	return &clone, nil
}

func (r *mockPrivateMessageRepo) GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.PrivateMessage, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.PrivateMessage
	for _, pm := range r.m.privateMessages {
		if pm.QuestionID != nil && *pm.QuestionID == questionID {
			clone := *pm
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *mockPrivateMessageRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.privateMessages, id)
	return nil
}

// ===== announcements =====

type mockAnnouncementRepo struct{ m *mockRepository }

func (r *mockAnnouncementRepo) Create(ctx context.Context, tx *gorm.DB, a *models.Announcement) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if a.ID == 0 {
		a.ID = r.m.nextIdentity()
	}
	clone := *a
	r.m.announcements[a.ID] = &clone
	return nil
}

func (r *mockAnnouncementRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Announcement, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.announcements[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *mockAnnouncementRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*models.Announcement, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Announcement, 0, len(r.m.announcements))
	for _, a := range r.m.announcements {
		clone := *a
		out = append(out, &clone)
	}
	return out, nil
}

func (r *mockAnnouncementRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.announcements, id)
	return nil
}

// ===== staff messages =====

type mockStaffMessageRepo struct{ m *mockRepository }

func (r *mockStaffMessageRepo) Create(ctx context.Context, tx *gorm.DB, sm *models.StaffMessage) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if sm.ID == 0 {
		sm.ID = r.m.nextIdentity()
	}
	clone := *sm
	r.m.staffMessages[sm.ID] = &clone
	return nil
}

func (r *mockStaffMessageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StaffMessage, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	sm, ok := r.m.staffMessages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *sm
	return &clone, nil
}

func (r *mockStaffMessageRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*models.StaffMessage, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.StaffMessage, 0, len(r.m.staffMessages))
	for _, sm := range r.m.staffMessages {
		clone := *sm
		out = append(out, &clone)
	}
	return out, nil
}

func (r *mockStaffMessageRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.staffMessages, id)
	return nil
}

// ===== read markers =====

type mockReadMessageRepo struct{ m *mockRepository }

func readKey(userID, messageID uint) string {
	return fmt.Sprintf("%d:%d", userID, messageID)
}

func (r *mockReadMessageRepo) Mark(ctx context.Context, tx *gorm.DB, userID, messageID uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.readMessages[readKey(userID, messageID)] = &models.ReadMessage{UserID: userID, MessageID: messageID}
	return nil
}

func (r *mockReadMessageRepo) GetByKey(ctx context.Context, tx *gorm.DB, userID, messageID uint) (*models.ReadMessage, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	mark, ok := r.m.readMessages[readKey(userID, messageID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *mark
	return &clone, nil
}

func (r *mockReadMessageRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.ReadMessage, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.ReadMessage
	for _, mark := range r.m.readMessages {
		if mark.UserID == userID {
			clone := *mark
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *mockReadMessageRepo) DeleteByKey(ctx context.Context, tx *gorm.DB, userID, messageID uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.readMessages, readKey(userID, messageID))
	return nil
}

func (r *mockReadMessageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ReadMessage, error) {
	return nil, repositories.ErrUnsupported
}

func (r *mockReadMessageRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return repositories.ErrUnsupported
}

// ===== reviews =====

type mockReviewRepo struct{ m *mockRepository }

func (r *mockReviewRepo) Create(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	clone := *review
	r.m.reviews[reviewKey(review.ReviewerID, review.UserID)] = &clone
	return nil
}

func (r *mockReviewRepo) GetByKey(ctx context.Context, tx *gorm.DB, reviewerID, userID uint) (*models.Review, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	review, ok := r.m.reviews[reviewKey(reviewerID, userID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *review
	return &clone, nil
}

func (r *mockReviewRepo) GetByReviewer(ctx context.Context, tx *gorm.DB, reviewerID uint) ([]*models.Review, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Review
	for _, review := range r.m.reviews {
		if review.ReviewerID == reviewerID {
			clone := *review
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *mockReviewRepo) GetByOwner(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Review, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Review
	for _, review := range r.m.reviews {
		if review.UserID == userID {
			clone := *review
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *mockReviewRepo) Update(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := reviewKey(review.ReviewerID, review.UserID)
	if _, ok := r.m.reviews[key]; !ok {
		return repositories.ErrNotFound
	}
	clone := *review
	r.m.reviews[key] = &clone
	return nil
}

func (r *mockReviewRepo) DeleteByKey(ctx context.Context, tx *gorm.DB, reviewerID, userID uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.reviews, reviewKey(reviewerID, userID))
	return nil
}

func (r *mockReviewRepo) CountByOwner(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var count int64
	for _, review := range r.m.reviews {
		if review.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *mockReviewRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Review, error) {
	return nil, repositories.ErrUnsupported
}

func (r *mockReviewRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return repositories.ErrUnsupported
}

// ===== admin requests =====

type mockAdminRequestRepo struct{ m *mockRepository }

func (r *mockAdminRequestRepo) Create(ctx context.Context, tx *gorm.DB, req *models.AdminRequest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if req.ID == 0 {
		req.ID = r.m.nextIdentity()
	}
	if req.State == "" {
		req.State = models.RequestPending
	}
	clone := *req
	r.m.adminRequests[req.ID] = &clone
	return nil
}

func (r *mockAdminRequestRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AdminRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	req, ok := r.m.adminRequests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *mockAdminRequestRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.AdminRequestFilters) ([]*models.AdminRequest, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.AdminRequest
	for _, req := range r.m.adminRequests {
		if filters.State != nil && req.State != *filters.State {
			continue
		}
		if filters.Type != nil && req.Type != *filters.Type {
			continue
		}
		clone := *req
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *mockAdminRequestRepo) Update(ctx context.Context, tx *gorm.DB, req *models.AdminRequest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.adminRequests[req.ID]; !ok {
		return repositories.ErrNotFound
	}
	clone := *req
	r.m.adminRequests[req.ID] = &clone
	return nil
}

func (r *mockAdminRequestRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.adminRequests, id)
	return nil
}

func (r *mockAdminRequestRepo) SetStateIfPending(ctx context.Context, tx *gorm.DB, id uint, newState models.AdminRequestState) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	req, ok := r.m.adminRequests[id]
	if !ok || req.State != models.RequestPending {
		return false, nil
	}
	req.State = newState
	return true, nil
}

// ===== reviewer requests =====

type mockReviewerRequestRepo struct{ m *mockRepository }

func (r *mockReviewerRequestRepo) Create(ctx context.Context, tx *gorm.DB, req *models.ReviewerRequest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if req.ID == 0 {
		req.ID = r.m.nextIdentity()
	}
	clone := *req
	r.m.reviewerRequests[req.ID] = &clone
	return nil
}

func (r *mockReviewerRequestRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ReviewerRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	req, ok := r.m.reviewerRequests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *mockReviewerRequestRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ReviewerRequestFilters) ([]*models.ReviewerRequest, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.ReviewerRequest
	for _, req := range r.m.reviewerRequests {
		if filters.Pending != nil && *filters.Pending != (req.Status == nil) {
			continue
		}
		clone := *req
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *mockReviewerRequestRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.reviewerRequests, id)
	return nil
}

func (r *mockReviewerRequestRepo) SetStatusIfPending(ctx context.Context, tx *gorm.DB, id uint, approved bool) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	req, ok := r.m.reviewerRequests[id]
	if !ok || req.Status != nil {
		return false, nil
	}
	status := approved
	req.Status = &status
	return true, nil
}

// ===== invites =====

type mockInviteRepo struct{ m *mockRepository }

func (r *mockInviteRepo) Create(ctx context.Context, tx *gorm.DB, inv *models.Invite) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if inv.ID == 0 {
		inv.ID = r.m.nextIdentity()
	}
	clone := *inv
	r.m.invites[inv.ID] = &clone
	return nil
}

func (r *mockInviteRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Invite, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, inv := range r.m.invites {
		if inv.Code == code {
			clone := *inv
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockInviteRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*models.Invite, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Invite, 0, len(r.m.invites))
	for _, inv := range r.m.invites {
		clone := *inv
		out = append(out, &clone)
	}
	return out, nil
}

func (r *mockInviteRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.invites, id)
	return nil
}

func (r *mockInviteRepo) ConsumeIfUnused(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	inv, ok := r.m.invites[id]
	if !ok || inv.IsUsed {
		return false, nil
	}
	inv.IsUsed = true
	return true, nil
}

// ===== one-time passwords =====

type mockOTPRepo struct{ m *mockRepository }

func (r *mockOTPRepo) Create(ctx context.Context, tx *gorm.DB, otp *models.OneTimePassword) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if otp.ID == 0 {
		otp.ID = r.m.nextIdentity()
	}
	clone := *otp
	r.m.otps[otp.ID] = &clone
	return nil
}

func (r *mockOTPRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.OneTimePassword, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	otp, ok := r.m.otps[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *otp
	return &clone, nil
}

func (r *mockOTPRepo) GetActiveByTarget(ctx context.Context, tx *gorm.DB, targetID uint) ([]*models.OneTimePassword, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.OneTimePassword
	for _, otp := range r.m.otps {
		if otp.TargetID == targetID && !otp.IsUsed {
			clone := *otp
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *mockOTPRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.otps, id)
	return nil
}

func (r *mockOTPRepo) ConsumeIfUnused(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	otp, ok := r.m.otps[id]
	if !ok || otp.IsUsed {
		return false, nil
	}
	otp.IsUsed = true
	return true, nil
}

// ===== audit log =====

type mockAuditRepo struct{ m *mockRepository }

func (r *mockAuditRepo) Append(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.auditLogs = append(r.m.auditLogs, entry)
	return nil
}

func (r *mockAuditRepo) GetByActor(ctx context.Context, tx *gorm.DB, actorID uint, limit int) ([]*models.AuditLog, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.AuditLog
	for _, entry := range r.m.auditLogs {
		if entry.ActorID == actorID {
			out = append(out, entry)
		}
	}
	return out, nil
}
