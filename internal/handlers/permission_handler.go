package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "expenso/internal/errors"
	"expenso/internal/models"
	"expenso/internal/services"
)

// PermissionHandler handles grant and share-link requests
type PermissionHandler struct {
	permissionService services.PermissionServicer
	auditService      services.AuditServicer
}

// NewPermissionHandler creates a new PermissionHandler
func NewPermissionHandler(permissionService services.PermissionServicer, auditService services.AuditServicer) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService, auditService: auditService}
}

// GrantRequest represents the grant payload
type GrantRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required,role"`
}

// CreateShareLinkRequest represents the share-link creation payload
type CreateShareLinkRequest struct {
	PermissionLevel string     `json:"permission_level" binding:"required,permission_level"`
	ExpiresAt       *time.Time `json:"expires_at" binding:"omitempty"`
}

// ShareLinkResponse exposes a share link without its token unless freshly created
type ShareLinkResponse struct {
	ID              uint       `json:"id"`
	CategoryID      uint       `json:"category_id"`
	PermissionLevel string     `json:"permission_level"`
	ExpiresAt       *time.Time `json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Grant creates or updates a user's role on a category.
// @Summary     Grant a role
// @Description Admin-only; grants a role on a category, updating it when a grant already exists
// @Tags        permissions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Param       request body GrantRequest true "Grant data"
// @Success     200 {object} models.CategoryPermission "Existing grant updated"
// @Success     201 {object} models.CategoryPermission "Grant created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Target user not found"
// @Router      /categories/{id}/permissions [post]
func (h *PermissionHandler) Grant(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	perm, created, err := h.permissionService.Grant(p, categoryID, req.UserID, models.Role(req.Role))
	if err != nil {
		respondWithError(c, err)
		return
	}

	if userID, ok := p.UserID(); ok {
		h.auditService.Log(userID, "grant", "category_permission", perm.ID, c.ClientIP(),
			map[string]interface{}{"user_id": req.UserID, "role": req.Role})
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"permission": perm})
}

// ListPermissions lists the direct grants on a category.
// @Summary     List grants
// @Tags        permissions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {array} models.CategoryPermission "Grants"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /categories/{id}/permissions [get]
func (h *PermissionHandler) ListPermissions(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	perms, err := h.permissionService.List(p, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"permissions": perms})
}

// Revoke removes a user's grant from a category.
// @Summary     Revoke a grant
// @Tags        permissions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Param       userID path int true "Target user ID"
// @Success     200 {object} MessageResponse "Grant revoked"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Grant not found"
// @Router      /categories/{id}/permissions/{userID} [delete]
func (h *PermissionHandler) Revoke(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	targetUserID, err := parsePathID(c, "userID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.permissionService.Revoke(p, categoryID, targetUserID); err != nil {
		respondWithError(c, err)
		return
	}

	if userID, ok := p.UserID(); ok {
		h.auditService.Log(userID, "revoke", "category_permission", categoryID, c.ClientIP(),
			map[string]interface{}{"user_id": targetUserID})
	}
	c.JSON(http.StatusOK, gin.H{"message": "Permission revoked"})
}

// CreateShareLink creates a guest share link scoped to a category.
// @Summary     Create a share link
// @Description Admin-only; the token is returned once, on creation
// @Tags        permissions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Param       request body CreateShareLinkRequest true "Share-link data"
// @Success     201 {object} models.GuestToken "Share link created"
// @Failure     400 {object} ErrorResponse "Invalid input or expiry not in the future"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /categories/{id}/share-links [post]
func (h *PermissionHandler) CreateShareLink(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateShareLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	link, err := h.permissionService.CreateShareLink(p, categoryID, models.PermissionLevel(req.PermissionLevel), req.ExpiresAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if userID, ok := p.UserID(); ok {
		h.auditService.Log(userID, "create", "guest_token", link.ID, c.ClientIP(), nil)
	}
	c.JSON(http.StatusCreated, gin.H{"share_link": link})
}

// ListShareLinks lists the share links on a category.
// @Summary     List share links
// @Tags        permissions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {array} ShareLinkResponse "Share links"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /categories/{id}/share-links [get]
func (h *PermissionHandler) ListShareLinks(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	links, err := h.permissionService.ListShareLinks(p, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// The secret is only disclosed at creation time.
	out := make([]ShareLinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, ShareLinkResponse{
			ID:              l.ID,
			CategoryID:      l.CategoryID,
			PermissionLevel: string(l.PermissionLevel),
			ExpiresAt:       l.ExpiresAt,
			CreatedAt:       l.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"share_links": out})
}

// RevokeShareLink deletes a share link, invalidating its token immediately.
// @Summary     Revoke a share link
// @Tags        permissions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Param       linkID path int true "Share link ID"
// @Success     200 {object} MessageResponse "Share link revoked"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Share link not found"
// @Router      /categories/{id}/share-links/{linkID} [delete]
func (h *PermissionHandler) RevokeShareLink(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	linkID, err := parsePathID(c, "linkID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.permissionService.RevokeShareLink(p, categoryID, linkID); err != nil {
		respondWithError(c, err)
		return
	}

	if userID, ok := p.UserID(); ok {
		h.auditService.Log(userID, "revoke", "guest_token", linkID, c.ClientIP(), nil)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Share link revoked"})
}
