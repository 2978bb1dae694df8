package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// StatsCache holds aggregate ticket counts between mutations. Implementations
// are best-effort: Get returns nil on miss.
type StatsCache interface {
	Get(ctx context.Context) *domain.TicketStats
	Set(ctx context.Context, stats *domain.TicketStats)
	Invalidate(ctx context.Context)
}

// TicketService is the lifecycle engine: it orchestrates authorized ticket
// reads and mutations against the store and computes the interested parties
// for notification fan-out.
type TicketService struct {
	tickets    repository.TicketRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	stats      StatsCache
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CategoryRepo repository.CategoryRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
	StatsCache   StatsCache
	Logger       *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	CategoryID  string
	Attachment  *string
}

// TicketListFilter describes listing filters. AssignedToSelf and
// CreatedBySelf are opt-in narrowing; an unfiltered call returns all tickets
// regardless of the caller's role.
type TicketListFilter struct {
	Status         *domain.TicketStatus
	AssignedToSelf bool
	CreatedBySelf  bool
}

// TicketUpdateInput describes the updatable fields. Nil fields are ignored.
type TicketUpdateInput struct {
	Status     *domain.TicketStatus
	Comment    *string
	AssignedTo *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		categories: deps.CategoryRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		stats:      deps.StatsCache,
		logger:     logger,
	}
}

// CreateTicket validates and stores a new ticket. New tickets always start
// OPEN with no assignee and an empty thread; nobody is notified on create.
func (s *TicketService) CreateTicket(ctx context.Context, principal *domain.User, input TicketCreateInput) (*TicketView, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !authz.CanPerform(principal, authz.ActionCreateTicket, nil) {
		return nil, apperrors.NewForbidden("not authorized")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || input.CategoryID == "" {
		return nil, apperrors.NewValidationError("title, description and category are required", nil)
	}

	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCategory(input.CategoryID)
		}
		return nil, apperrors.MapError(err)
	}

	// Defensive re-check: the principal came from the auth layer but may have
	// been deleted since the token was minted.
	creator, err := s.users.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidPrincipal(principal.ID)
		}
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		CategoryID:  category.ID,
		Status:      domain.TicketStatusOpen,
		CreatedBy:   creator.ID,
		Attachment:  input.Attachment,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}

	view := &TicketView{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Category:    &CategorySummary{ID: category.ID, Name: category.Name},
		Status:      ticket.Status,
		CreatedBy:   principalSummary(creator),
		Attachment:  ticket.Attachment,
		Comments:    []CommentView{},
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
	return view, nil
}

// ListTickets returns tickets newest-first with references resolved.
func (s *TicketService) ListTickets(ctx context.Context, principal *domain.User, filter TicketListFilter) ([]TicketView, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !authz.CanPerform(principal, authz.ActionListTickets, nil) {
		return nil, apperrors.NewForbidden("not authorized")
	}

	repoFilter := repository.TicketFilter{Status: filter.Status}
	if filter.AssignedToSelf {
		id := principal.ID
		repoFilter.AssignedTo = &id
	}
	if filter.CreatedBySelf {
		id := principal.ID
		repoFilter.CreatedBy = &id
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	res := newResolver(s.categories, s.users)
	views := make([]TicketView, 0, len(tickets))
	for i := range tickets {
		views = append(views, *s.resolveTicket(ctx, res, &tickets[i], false))
	}
	return views, nil
}

// GetTicket returns one fully-resolved ticket including its comment thread.
func (s *TicketService) GetTicket(ctx context.Context, principal *domain.User, id string) (*TicketView, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !authz.CanPerform(principal, authz.ActionGetTicket, nil) {
		return nil, apperrors.NewForbidden("not authorized")
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}

	res := newResolver(s.categories, s.users)
	return s.resolveTicket(ctx, res, ticket, true), nil
}

// UpdateTicket applies status, assignment and comment changes in that order,
// persists the result, and hands the deduplicated interested parties to the
// notification pipeline out-of-band.
func (s *TicketService) UpdateTicket(ctx context.Context, principal *domain.User, id string, input TicketUpdateInput) (*TicketView, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if !authz.CanPerform(principal, authz.ActionUpdateTicket, ticket) {
		return nil, apperrors.NewForbidden("not authorized to update this ticket")
	}

	interested := map[string]struct{}{}
	var newStatus *domain.TicketStatus
	recordChanged := false

	if input.Status != nil && *input.Status != ticket.Status {
		if !domain.ValidTicketStatus(*input.Status) {
			return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": *input.Status})
		}
		ticket.Status = *input.Status
		newStatus = input.Status
		recordChanged = true
		interested[ticket.CreatedBy] = struct{}{}
		if ticket.AssignedTo != nil {
			interested[*ticket.AssignedTo] = struct{}{}
		}
	}

	if input.AssignedTo != nil && *input.AssignedTo != "" &&
		(ticket.AssignedTo == nil || *ticket.AssignedTo != *input.AssignedTo) {
		target, err := s.users.GetByID(ctx, *input.AssignedTo)
		switch {
		case err == nil:
			ticket.AssignedTo = &target.ID
			recordChanged = true
			interested[target.ID] = struct{}{}
		case errors.Is(err, pgx.ErrNoRows):
			// Unresolvable assignee: skip the reassignment silently, the rest
			// of the update still applies.
			s.logger.Debug("skipping reassignment to unknown principal",
				zap.String("ticket_id", ticket.ID),
				zap.String("assigned_to", *input.AssignedTo))
		default:
			return nil, apperrors.MapError(err)
		}
	}

	commentText := ""
	if input.Comment != nil {
		commentText = strings.TrimSpace(*input.Comment)
	}
	if commentText != "" {
		comment := &domain.Comment{
			TicketID: ticket.ID,
			AuthorID: principal.ID,
			Text:     commentText,
		}
		if err := s.tickets.AppendComment(ctx, comment); err != nil {
			return nil, apperrors.MapError(err)
		}
		interested[ticket.CreatedBy] = struct{}{}
		if ticket.AssignedTo != nil {
			interested[*ticket.AssignedTo] = struct{}{}
		}
	}

	if recordChanged {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, apperrors.MapError(err)
		}
		if s.stats != nil {
			s.stats.Invalidate(ctx)
		}
	}

	if len(interested) > 0 {
		s.publishTicketUpdated(ctx, principal, ticket, newStatus, commentText, interested)
	}

	res := newResolver(s.categories, s.users)
	return s.resolveTicket(ctx, res, ticket, true), nil
}

// GetStats returns aggregate ticket counts, served from cache when fresh.
func (s *TicketService) GetStats(ctx context.Context, principal *domain.User) (*domain.TicketStats, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !authz.CanPerform(principal, authz.ActionViewStats, nil) {
		return nil, apperrors.NewForbidden("not authorized")
	}

	if s.stats != nil {
		if cached := s.stats.Get(ctx); cached != nil {
			return cached, nil
		}
	}

	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if stats.ByStatus == nil {
		stats.ByStatus = []domain.StatusCount{}
	}
	if s.stats != nil {
		s.stats.Set(ctx, stats)
	}
	return stats, nil
}

// publishTicketUpdated resolves the interested parties to deliverable
// recipients and emits a single event for the mutation. Parties without a
// resolvable email are dropped.
func (s *TicketService) publishTicketUpdated(ctx context.Context, actor *domain.User, ticket *domain.Ticket, newStatus *domain.TicketStatus, comment string, interested map[string]struct{}) {
	if s.dispatcher == nil {
		return
	}

	recipients := make([]events.Recipient, 0, len(interested))
	for userID := range interested {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			s.logger.Debug("interested party unresolvable, skipping",
				zap.String("user_id", userID), zap.Error(err))
			continue
		}
		if user.Email == "" {
			continue
		}
		recipients = append(recipients, events.Recipient{UserID: user.ID, Email: user.Email})
	}
	if len(recipients) == 0 {
		return
	}

	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketUpdated,
		TicketID:  ticket.ID,
		ActorID:   actor.ID,
		Timestamp: time.Now(),
		Payload: events.TicketUpdatedPayload{
			Title:      ticket.Title,
			Status:     ticket.Status,
			NewStatus:  newStatus,
			AssignedTo: ticket.AssignedTo,
			Comment:    comment,
			Recipients: recipients,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// resolver memoizes category and user lookups within a single request.
type resolver struct {
	categories repository.CategoryRepository
	users      repository.UserRepository
	catCache   map[string]*domain.Category
	userCache  map[string]*domain.User
}

func newResolver(categories repository.CategoryRepository, users repository.UserRepository) *resolver {
	return &resolver{
		categories: categories,
		users:      users,
		catCache:   map[string]*domain.Category{},
		userCache:  map[string]*domain.User{},
	}
}

func (r *resolver) category(ctx context.Context, id string) *domain.Category {
	if cached, ok := r.catCache[id]; ok {
		return cached
	}
	category, err := r.categories.GetByID(ctx, id)
	if err != nil {
		category = nil
	}
	r.catCache[id] = category
	return category
}

func (r *resolver) user(ctx context.Context, id string) *domain.User {
	if cached, ok := r.userCache[id]; ok {
		return cached
	}
	user, err := r.users.GetByID(ctx, id)
	if err != nil {
		user = nil
	}
	r.userCache[id] = user
	return user
}

func (s *TicketService) resolveTicket(ctx context.Context, res *resolver, ticket *domain.Ticket, withComments bool) *TicketView {
	view := &TicketView{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Attachment:  ticket.Attachment,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
	if category := res.category(ctx, ticket.CategoryID); category != nil {
		view.Category = &CategorySummary{ID: category.ID, Name: category.Name}
	}
	if creator := res.user(ctx, ticket.CreatedBy); creator != nil {
		view.CreatedBy = principalSummary(creator)
	}
	if ticket.AssignedTo != nil {
		if assignee := res.user(ctx, *ticket.AssignedTo); assignee != nil {
			view.AssignedTo = principalSummary(assignee)
		}
	}
	if !withComments {
		return view
	}

	view.Comments = []CommentView{}
	comments, err := s.tickets.ListComments(ctx, ticket.ID)
	if err != nil {
		s.logger.Warn("failed to load comment thread",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return view
	}
	for _, comment := range comments {
		cv := CommentView{Text: comment.Text, CreatedAt: comment.CreatedAt}
		if author := res.user(ctx, comment.AuthorID); author != nil {
			cv.Author = &CommentAuthor{Name: author.Name, Role: author.Role}
		}
		view.Comments = append(view.Comments, cv)
	}
	return view
}

func principalSummary(user *domain.User) *PrincipalSummary {
	return &PrincipalSummary{ID: user.ID, Name: user.Name, Email: user.Email}
}
