package handlers

import (
	"net/http"
	"strconv"

	"civicdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// CommentHandler serves the comment thread attached to an issue.
// Creation and mutation are admin routes; listing is shared between
// admins and the issue's owner.
type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{
		comments: services.NewCommentService(),
	}
}

type commentRequest struct {
	Content string `json:"content"`
}

// Create posts a new admin comment on an issue.
func (h *CommentHandler) Create(c *gin.Context) {
	issueID, ok := issueIDParam(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Comment content is required"})
		return
	}

	comment, err := h.comments.Create(issueID, currentViewer(c).SubjectID, req.Content)
	if err != nil {
		serviceError(c, err, "Failed to create comment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment created successfully",
		"comment": comment,
	})
}

// ListByIssue returns an issue's comments oldest first. Users only get
// through for issues they own.
func (h *CommentHandler) ListByIssue(c *gin.Context) {
	issueID, ok := issueIDParam(c)
	if !ok {
		return
	}

	comments, err := h.comments.ListForIssue(issueID, currentViewer(c))
	if err != nil {
		serviceError(c, err, "Failed to retrieve comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Comments retrieved successfully",
		"comments": comments,
		"count":    len(comments),
	})
}

// Update rewrites a comment. Any admin may edit any comment.
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, err := strconv.ParseUint(c.Param("commentId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid comment id"})
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Comment content is required"})
		return
	}

	comment, err := h.comments.Update(uint(commentID), req.Content)
	if err != nil {
		serviceError(c, err, "Failed to update comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment updated successfully",
		"comment": comment,
	})
}

// Delete removes a comment. Any admin may delete any comment.
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, err := strconv.ParseUint(c.Param("commentId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid comment id"})
		return
	}

	if err := h.comments.Delete(uint(commentID)); err != nil {
		serviceError(c, err, "Failed to delete comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment deleted successfully",
	})
}
