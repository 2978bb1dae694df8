package authz

import "github.com/spec-kit/helpdesk-service/internal/domain"

// Action identifies an operation a principal may request.
type Action string

const (
	ActionListCategories Action = "list_categories"
	ActionCreateCategory Action = "create_category"
	ActionDeleteCategory Action = "delete_category"
	ActionCreateTicket   Action = "create_ticket"
	ActionListTickets    Action = "list_tickets"
	ActionGetTicket      Action = "get_ticket"
	ActionUpdateTicket   Action = "update_ticket"
	ActionViewStats      Action = "view_stats"
	ActionListUsers      Action = "list_users"
	ActionDeleteUser     Action = "delete_user"
)

// rule describes who may perform an action. A nil roles set means any
// authenticated principal. creatorAllowed lets the ticket's creator through
// regardless of role.
type rule struct {
	roles          map[domain.Role]struct{}
	creatorAllowed bool
}

func anyAuthenticated() rule {
	return rule{}
}

func rolesOnly(roles ...domain.Role) rule {
	set := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return rule{roles: set}
}

// policy is the single decision table consulted for every request. Role
// checks live here and nowhere else.
var policy = map[Action]rule{
	ActionListCategories: anyAuthenticated(),
	ActionCreateCategory: rolesOnly(domain.RoleAdmin),
	ActionDeleteCategory: rolesOnly(domain.RoleAdmin),
	ActionCreateTicket:   anyAuthenticated(),
	ActionListTickets:    anyAuthenticated(),
	ActionGetTicket:      anyAuthenticated(),
	ActionViewStats:      anyAuthenticated(),
	ActionUpdateTicket: {
		roles: map[domain.Role]struct{}{
			domain.RoleAdmin: {},
			domain.RoleAgent: {},
		},
		creatorAllowed: true,
	},
	ActionListUsers:  rolesOnly(domain.RoleAdmin),
	ActionDeleteUser: rolesOnly(domain.RoleAdmin),
}

// CanPerform decides whether the principal may perform the action. The ticket
// argument is consulted only for creator-based rules and may be nil for
// actions that do not target a specific ticket.
func CanPerform(principal *domain.User, action Action, ticket *domain.Ticket) bool {
	if principal == nil {
		return false
	}
	r, ok := policy[action]
	if !ok {
		return false
	}
	if r.roles == nil {
		return true
	}
	if _, allowed := r.roles[principal.Role]; allowed {
		return true
	}
	if r.creatorAllowed && ticket != nil && ticket.CreatedBy == principal.ID {
		return true
	}
	return false
}
