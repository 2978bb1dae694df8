package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestCanPerform(t *testing.T) {
	admin := &domain.User{ID: "usr-admin", Role: domain.RoleAdmin}
	agent := &domain.User{ID: "usr-agent", Role: domain.RoleAgent}
	customer := &domain.User{ID: "usr-cust", Role: domain.RoleCustomer}
	other := &domain.User{ID: "usr-other", Role: domain.RoleCustomer}

	ticket := &domain.Ticket{ID: "tck-1", CreatedBy: customer.ID}

	tests := []struct {
		name      string
		principal *domain.User
		action    Action
		ticket    *domain.Ticket
		want      bool
	}{
		{"nil principal denied", nil, ActionListTickets, nil, false},
		{"unknown action denied", admin, Action("reboot_server"), nil, false},

		{"customer lists categories", customer, ActionListCategories, nil, true},
		{"customer creates ticket", customer, ActionCreateTicket, nil, true},
		{"customer lists tickets", customer, ActionListTickets, nil, true},
		{"customer reads ticket", customer, ActionGetTicket, ticket, true},
		{"customer views stats", customer, ActionViewStats, nil, true},

		{"customer creates category denied", customer, ActionCreateCategory, nil, false},
		{"agent creates category denied", agent, ActionCreateCategory, nil, false},
		{"admin creates category", admin, ActionCreateCategory, nil, true},
		{"admin deletes category", admin, ActionDeleteCategory, nil, true},
		{"agent deletes category denied", agent, ActionDeleteCategory, nil, false},

		{"creator updates own ticket", customer, ActionUpdateTicket, ticket, true},
		{"other customer update denied", other, ActionUpdateTicket, ticket, false},
		{"agent updates any ticket", agent, ActionUpdateTicket, ticket, true},
		{"admin updates any ticket", admin, ActionUpdateTicket, ticket, true},
		{"creator rule needs a ticket", customer, ActionUpdateTicket, nil, false},

		{"admin lists users", admin, ActionListUsers, nil, true},
		{"agent lists users denied", agent, ActionListUsers, nil, false},
		{"admin deletes user", admin, ActionDeleteUser, nil, true},
		{"customer deletes user denied", customer, ActionDeleteUser, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPerform(tt.principal, tt.action, tt.ticket))
		})
	}
}
