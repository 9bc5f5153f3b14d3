package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/notifier"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/repository"
)

func zapNop() *zap.Logger { return zap.NewNop() }

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListAdmins(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var admins []domain.User
	for i := 1; i <= r.seq; i++ {
		id := fmt.Sprintf("user-%d", i)
		if user, ok := r.users[id]; ok && user.IsAdmin() {
			admins = append(admins, user)
		}
	}
	return admins, nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for i := 1; i <= r.seq; i++ {
		ticket, ok := r.tickets[fmt.Sprintf("ticket-%d", i)]
		if !ok {
			continue
		}
		if filter.OwnerID != nil && ticket.OwnerID != *filter.OwnerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
			continue
		}
		out = append(out, ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) CountWithFilter(ctx context.Context, filter repository.TicketFilter) (int, error) {
	items, err := r.ListWithFilter(ctx, filter)
	return len(items), err
}

func containsStatus(list []domain.TicketStatus, v domain.TicketStatus) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.TicketPriority, v domain.TicketPriority) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	seq      int
	comments []domain.Comment
	users    *fakeUserRepo
}

func newFakeCommentRepo(users *fakeUserRepo) *fakeCommentRepo {
	return &fakeCommentRepo{users: users}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	comment.ID = fmt.Sprintf("comment-%d", r.seq)
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.comments {
		if r.comments[i].ID == id {
			c := r.comments[i]
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Comment
	for i := len(r.comments) - 1; i >= 0; i-- {
		if r.comments[i].TicketID == ticketID {
			out = append(out, r.comments[i])
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) ListCommenters(ctx context.Context, ticketID string) ([]domain.User, error) {
	r.mu.Lock()
	authorIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for i := range r.comments {
		if r.comments[i].TicketID != ticketID {
			continue
		}
		if _, ok := seen[r.comments[i].AuthorID]; ok {
			continue
		}
		seen[r.comments[i].AuthorID] = struct{}{}
		authorIDs = append(authorIDs, r.comments[i].AuthorID)
	}
	r.mu.Unlock()

	var out []domain.User
	for _, id := range authorIDs {
		user, err := r.users.GetByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, *user)
	}
	return out, nil
}

type fakeActivityRepo struct {
	mu         sync.Mutex
	seq        int
	activities []domain.Activity
	failCreate bool
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{}
}

func (r *fakeActivityRepo) Create(_ context.Context, activity *domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return fmt.Errorf("ledger unavailable")
	}
	r.seq++
	activity.ID = fmt.Sprintf("activity-%d", r.seq)
	activity.CreatedAt = time.Now()
	r.activities = append(r.activities, *activity)
	return nil
}

func (r *fakeActivityRepo) ListWithFilter(_ context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Activity
	for i := len(r.activities) - 1; i >= 0; i-- {
		if filter.Type != nil && r.activities[i].Type != *filter.Type {
			continue
		}
		out = append(out, r.activities[i])
	}
	return out, nil
}

func (r *fakeActivityRepo) CountWithFilter(ctx context.Context, filter repository.ActivityFilter) (int, error) {
	items, err := r.ListWithFilter(ctx, filter)
	return len(items), err
}

func (r *fakeActivityRepo) ListBySubject(_ context.Context, subjectType domain.SubjectType, subjectID string) ([]domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Activity
	for i := len(r.activities) - 1; i >= 0; i-- {
		if r.activities[i].SubjectType == subjectType && r.activities[i].SubjectID == subjectID {
			out = append(out, r.activities[i])
		}
	}
	return out, nil
}

func (r *fakeActivityRepo) all() []domain.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Activity, len(r.activities))
	copy(out, r.activities)
	return out
}

func (r *fakeActivityRepo) byType(kind domain.ActivityType) []domain.Activity {
	var out []domain.Activity
	for _, activity := range r.all() {
		if activity.Type == kind {
			out = append(out, activity)
		}
	}
	return out
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []notifier.Job
}

func (q *fakeQueue) Enqueue(_ context.Context, job notifier.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) EnqueueAfter(ctx context.Context, job notifier.Job, _ time.Duration) error {
	return q.Enqueue(ctx, job)
}

func (q *fakeQueue) Dequeue(_ context.Context) (notifier.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return notifier.Job{}, fmt.Errorf("empty queue")
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

func (q *fakeQueue) snapshot() []notifier.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]notifier.Job, len(q.jobs))
	copy(out, q.jobs)
	return out
}
