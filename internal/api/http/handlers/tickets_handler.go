package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
	upload  config.UploadConfig
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, upload config.UploadConfig) *TicketsHandler {
	return &TicketsHandler{service: ticketService, upload: upload}
}

// CreateTicket POST /api/tickets. Accepts multipart form with an optional
// image attachment.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.Category,
	}

	if file, err := c.FormFile("attachment"); err == nil && file != nil {
		url, err := h.saveAttachment(c, file.Filename, file.Size, func(dest string) error {
			return c.SaveFile(file, dest)
		})
		if err != nil {
			return err
		}
		input.Attachment = &url
	}

	ticket, err := h.service.CreateTicket(c.Context(), principal, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /api/tickets?status=&assigned=me&mine=true.
// The assigned/mine filters are opt-in query scoping, not enforced row-level
// security: omitting them returns the full list for any role.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := service.TicketListFilter{
		AssignedToSelf: c.Query("assigned") == "me",
		CreatedBySelf:  c.Query("mine") == "true",
	}
	if statusStr := strings.TrimSpace(c.Query("status")); statusStr != "" {
		status := domain.TicketStatus(statusStr)
		filter.Status = &status
	}

	tickets, err := h.service.ListTickets(c.Context(), principal, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.service.GetTicket(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateTicket PUT /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateTicket(c.Context(), principal, c.Params("id"), service.TicketUpdateInput{
		Status:     req.Status,
		Comment:    req.Comment,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// GetStats GET /api/tickets/stats.
func (h *TicketsHandler) GetStats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	stats, err := h.service.GetStats(c.Context(), principal)
	if err != nil {
		return err
	}
	byStatus := make([]dto.StatusCountResponse, 0, len(stats.ByStatus))
	for _, entry := range stats.ByStatus {
		byStatus = append(byStatus, dto.StatusCountResponse{Status: entry.Status, Count: entry.Count})
	}
	return c.JSON(dto.StatsResponse{
		Total:    stats.Total,
		Open:     stats.Open,
		Resolved: stats.Resolved,
		ByStatus: byStatus,
	})
}

// saveAttachment stores an uploaded file under the uploads dir with a
// generated name and returns its public URL path.
func (h *TicketsHandler) saveAttachment(c *fiber.Ctx, originalName string, size int64, save func(dest string) error) (string, error) {
	if h.upload.MaxSizeBytes > 0 && size > h.upload.MaxSizeBytes {
		return "", apperrors.NewValidationError("attachment too large", map[string]any{"max_bytes": h.upload.MaxSizeBytes})
	}
	if err := os.MkdirAll(h.upload.Dir, 0o755); err != nil {
		return "", apperrors.NewInternalError(err)
	}
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(originalName))
	if err := save(filepath.Join(h.upload.Dir, name)); err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return "/uploads/" + name, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	return strings.ReplaceAll(name, " ", "_")
}

func ticketResponse(ticket *service.TicketView) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Attachment:  ticket.Attachment,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
	if ticket.Category != nil {
		resp.Category = &dto.CategorySummary{ID: ticket.Category.ID, Name: ticket.Category.Name}
	}
	if ticket.CreatedBy != nil {
		resp.CreatedBy = &dto.PrincipalSummary{ID: ticket.CreatedBy.ID, Name: ticket.CreatedBy.Name, Email: ticket.CreatedBy.Email}
	}
	if ticket.AssignedTo != nil {
		resp.AssignedTo = &dto.PrincipalSummary{ID: ticket.AssignedTo.ID, Name: ticket.AssignedTo.Name, Email: ticket.AssignedTo.Email}
	}
	if ticket.Comments != nil {
		resp.Comments = make([]dto.CommentResponse, 0, len(ticket.Comments))
		for _, comment := range ticket.Comments {
			cr := dto.CommentResponse{Text: comment.Text, CreatedAt: comment.CreatedAt}
			if comment.Author != nil {
				cr.Author = &dto.CommentAuthor{Name: comment.Author.Name, Role: comment.Author.Role}
			}
			resp.Comments = append(resp.Comments, cr)
		}
	}
	return resp
}
