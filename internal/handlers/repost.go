package handlers

import (
	"net/http"
	"strconv"

	"civicdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// RepostHandler exposes the repost ledger, keyed by the issue in the
// path and the authenticated user.
type RepostHandler struct {
	reposts *services.RepostService
}

func NewRepostHandler() *RepostHandler {
	return &RepostHandler{
		reposts: services.NewRepostService(),
	}
}

func issueIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid issue id"})
		return 0, false
	}
	return uint(id), true
}

// Repost records the caller's endorsement of an issue.
func (h *RepostHandler) Repost(c *gin.Context) {
	issueID, ok := issueIDParam(c)
	if !ok {
		return
	}

	repost, count, err := h.reposts.AddRepost(issueID, currentViewer(c).SubjectID)
	if err != nil {
		serviceError(c, err, "Failed to repost issue")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Issue reposted successfully",
		"repost":      repost,
		"repostCount": count,
	})
}

// Unrepost withdraws the caller's endorsement.
func (h *RepostHandler) Unrepost(c *gin.Context) {
	issueID, ok := issueIDParam(c)
	if !ok {
		return
	}

	count, err := h.reposts.RemoveRepost(issueID, currentViewer(c).SubjectID)
	if err != nil {
		serviceError(c, err, "Failed to remove repost")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Repost removed successfully",
		"repostCount": count,
	})
}

// Check reports whether the caller has reposted the issue. Never 404s
// for an unknown issue; the answer is just false.
func (h *RepostHandler) Check(c *gin.Context) {
	issueID, ok := issueIDParam(c)
	if !ok {
		return
	}

	reposted, repost, err := h.reposts.HasReposted(issueID, currentViewer(c).SubjectID)
	if err != nil {
		serviceError(c, err, "Failed to check repost status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hasReposted": reposted,
		"repost":      repost,
	})
}
