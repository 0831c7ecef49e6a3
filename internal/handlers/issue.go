package handlers

import (
	"net/http"
	"strconv"

	"civicdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// IssueHandler serves the citizen-facing issue endpoints. Listing is
// always scoped to the caller's own issues.
type IssueHandler struct {
	issues *services.IssueService
}

func NewIssueHandler() *IssueHandler {
	return &IssueHandler{
		issues: services.NewIssueService(),
	}
}

type createIssueRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Image            string `json:"image"`
	CategoryID       uint   `json:"categoryId"`
	ImportanceRating *int   `json:"importanceRating"`
}

// Create files a new issue for the authenticated user.
func (h *IssueHandler) Create(c *gin.Context) {
	var req createIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	rating := 0
	if req.ImportanceRating != nil {
		rating = *req.ImportanceRating
	}

	issue, err := h.issues.Create(currentViewer(c).SubjectID, services.CreateIssueInput{
		Title:            req.Title,
		Description:      req.Description,
		Image:            req.Image,
		CategoryID:       req.CategoryID,
		ImportanceRating: rating,
	})
	if err != nil {
		serviceError(c, err, "Failed to create issue")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Issue created successfully",
		"issue":   issue,
	})
}

// listOptions translates the shared query parameters (status, categoryId,
// sortBy, order) used by both the user and admin listings.
func listOptions(c *gin.Context) (services.ListOptions, bool) {
	opts := services.ListOptions{
		SortBy: c.DefaultQuery("sortBy", "createdAt"),
		Order:  c.DefaultQuery("order", "desc"),
	}

	if raw := c.Query("status"); raw != "" {
		status, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Status must be a number"})
			return opts, false
		}
		opts.Status = &status
	}

	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "categoryId must be a number"})
			return opts, false
		}
		categoryID := uint(id)
		opts.CategoryID = &categoryID
	}

	return opts, true
}

// List returns the caller's issues with repost counts and priority
// attached. sortBy=priority switches to the computed-score ordering.
func (h *IssueHandler) List(c *gin.Context) {
	opts, ok := listOptions(c)
	if !ok {
		return
	}
	ownerID := currentViewer(c).SubjectID
	opts.OwnerID = &ownerID

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

// Get returns one issue by ID.
func (h *IssueHandler) Get(c *gin.Context) {
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
