package handlers

import (
	"net/http"
	"strconv"

	"civicdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the triage dashboard: unscoped issue listings and
// status updates.
type AdminHandler struct {
	issues *services.IssueService
}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{
		issues: services.NewIssueService(),
	}
}

// ListIssues returns every issue, with the same filter and sort
// semantics as the user listing but no ownership scoping.
func (h *AdminHandler) ListIssues(c *gin.Context) {
	opts, ok := listOptions(c)
	if !ok {
		return
	}

	issues, err := h.issues.List(opts)
	if err != nil {
		serviceError(c, err, "Failed to retrieve issues")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Issues retrieved successfully",
		"issues":  issues,
		"count":   len(issues),
	})
}

// GetIssue returns one issue by ID.
func (h *AdminHandler) GetIssue(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid issue id"})
		return
	}

	issue, err := h.issues.Get(uint(id))
	if err != nil {
		serviceError(c, err, "Failed to retrieve issue")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Issue retrieved successfully",
		"issue":   issue,
	})
}

type updateStatusRequest struct {
	Status *int `json:"status"`
}

// UpdateIssueStatus moves an issue along the 0-5 triage scale.
func (h *AdminHandler) UpdateIssueStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid issue id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Status is required"})
		return
	}

	issue, err := h.issues.UpdateStatus(uint(id), *req.Status)
	if err != nil {
		serviceError(c, err, "Failed to update issue status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Issue status updated successfully",
		"issue":   issue,
	})
}
