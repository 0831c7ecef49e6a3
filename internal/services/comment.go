package services

import (
	"errors"

	"civicdesk/internal/db"
	"civicdesk/internal/models"
	"civicdesk/internal/utils"

	"gorm.io/gorm"
)

// Viewer is the resolved principal a request acts as. Handlers build it
// from the verified token claims; services trust it without re-checking.
type Viewer struct {
	SubjectID uint
	Role      string
}

// ScopedToOwnIssues reports whether the viewer may only touch issues
// they filed themselves.
func (v Viewer) ScopedToOwnIssues() bool {
	return v.Role != utils.RoleAdmin
}

// CommentService manages admin annotations on issues.
type CommentService struct{}

func NewCommentService() *CommentService {
	return &CommentService{}
}

// Create attaches a new admin comment to an issue.
func (s *CommentService) Create(issueID, adminID uint, content string) (*models.Comment, error) {
	content = utils.SanitizeText(content)
	if content == "" {
		return nil, Validationf("Comment content is required")
	}

	var issue models.Issue
	if err := db.DB.First(&issue, issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, err
	}

	var admin models.Admin
	if err := db.DB.First(&admin, adminID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}

	comment := models.Comment{
		IssueID: issueID,
		AdminID: adminID,
		Content: content,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		return nil, err
	}

	err := db.DB.Preload("Admin").First(&comment, comment.ID).Error
	return &comment, err
}

// ListForIssue returns an issue's comments oldest first. Users may only
// read comments on their own issues; admins are unrestricted.
func (s *CommentService) ListForIssue(issueID uint, viewer Viewer) ([]models.Comment, error) {
	var issue models.Issue
	if err := db.DB.First(&issue, issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, err
	}

	if viewer.ScopedToOwnIssues() && issue.UserID != viewer.SubjectID {
		return nil, ErrNotIssueOwner
	}

	var comments []models.Comment
	err := db.DB.Preload("Admin").
		Where("issue_id = ?", issueID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// Update rewrites a comment's content. Any authenticated admin may edit
// any comment; there is deliberately no per-author ownership check.
func (s *CommentService) Update(commentID uint, content string) (*models.Comment, error) {
	content = utils.SanitizeText(content)
	if content == "" {
		return nil, Validationf("Comment content is required")
	}

	var comment models.Comment
	if err := db.DB.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if err := db.DB.Model(&comment).Update("content", content).Error; err != nil {
		return nil, err
	}

	err := db.DB.Preload("Admin").First(&comment, comment.ID).Error
	return &comment, err
}

// Delete removes a comment. Same rule as Update: any admin may delete.
func (s *CommentService) Delete(commentID uint) error {
	var comment models.Comment
	if err := db.DB.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	return db.DB.Delete(&comment).Error
}
