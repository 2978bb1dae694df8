package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

var seedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo(users ...*domain.User) *memUserRepo {
	repo := &memUserRepo{users: map[string]*domain.User{}}
	for _, user := range users {
		clone := *user
		repo.users[user.ID] = &clone
	}
	return repo
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = fmt.Sprintf("usr-%d", len(r.users)+1)
	user.CreatedAt = seedTime
	user.UpdatedAt = seedTime
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type memCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]*domain.Category
}

func newMemCategoryRepo(categories ...*domain.Category) *memCategoryRepo {
	repo := &memCategoryRepo{categories: map[string]*domain.Category{}}
	for _, category := range categories {
		clone := *category
		repo.categories[category.ID] = &clone
	}
	return repo
}

func (r *memCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	category.ID = fmt.Sprintf("cat-%d", len(r.categories)+1)
	category.CreatedAt = seedTime
	category.UpdatedAt = seedTime
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.categories, id)
	return nil
}

func (r *memCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *category
	return &clone, nil
}

func (r *memCategoryRepo) GetByName(_ context.Context, name string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, category := range r.categories {
		if category.Name == name {
			clone := *category
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		result = append(result, *category)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type memTicketRepo struct {
	mu       sync.Mutex
	tickets  map[string]*domain.Ticket
	comments map[string][]domain.Comment
	seq      int

	updateCalls int
	statsCalls  int
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{
		tickets:  map[string]*domain.Ticket{},
		comments: map[string][]domain.Comment{},
	}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("tck-%d", r.seq)
	ticket.CreatedAt = seedTime.Add(time.Duration(r.seq) * time.Minute)
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	r.updateCalls++
	ticket.UpdatedAt = stored.UpdatedAt.Add(time.Minute)
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *memTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.CreatedBy != nil && ticket.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.AssignedTo != nil && (ticket.AssignedTo == nil || *ticket.AssignedTo != *filter.AssignedTo) {
			continue
		}
		result = append(result, *ticket)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *memTicketRepo) AppendComment(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[comment.TicketID]; !ok {
		return pgx.ErrNoRows
	}
	existing := r.comments[comment.TicketID]
	comment.ID = fmt.Sprintf("cmt-%d", len(existing)+1)
	comment.CreatedAt = seedTime.Add(time.Duration(len(existing)) * time.Second)
	r.comments[comment.TicketID] = append(existing, *comment)
	return nil
}

func (r *memTicketRepo) ListComments(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Comment{}, r.comments[ticketID]...), nil
}

func (r *memTicketRepo) Stats(_ context.Context) (*domain.TicketStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statsCalls++
	counts := map[domain.TicketStatus]int64{}
	for _, ticket := range r.tickets {
		counts[ticket.Status]++
	}
	stats := &domain.TicketStats{}
	statuses := make([]domain.TicketStatus, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })
	for _, status := range statuses {
		stats.ByStatus = append(stats.ByStatus, domain.StatusCount{Status: status, Count: counts[status]})
		stats.Total += counts[status]
		switch status {
		case domain.TicketStatusOpen:
			stats.Open = counts[status]
		case domain.TicketStatusResolved:
			stats.Resolved = counts[status]
		}
	}
	return stats, nil
}

type fakeStatsCache struct {
	mu          sync.Mutex
	stats       *domain.TicketStats
	invalidated int
}

func (c *fakeStatsCache) Get(_ context.Context) *domain.TicketStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *fakeStatsCache) Set(_ context.Context, stats *domain.TicketStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = stats
}

func (c *fakeStatsCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = nil
	c.invalidated++
}
