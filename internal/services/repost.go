package services

import (
	"errors"

	"civicdesk/internal/db"
	"civicdesk/internal/models"

	"gorm.io/gorm"
)

// RepostService is the ledger of user endorsements. It owns the
// one-repost-per-user and no-self-repost rules and derives the corpus-wide
// normalization statistics the priority scorer needs.
type RepostService struct{}

func NewRepostService() *RepostService {
	return &RepostService{}
}

// AddRepost records userID's endorsement of an issue and returns the new
// repost together with the updated count for that issue.
//
// Check order is observable through the error returned: missing issue,
// then duplicate, then self-repost.
func (s *RepostService) AddRepost(issueID, userID uint) (*models.Repost, int64, error) {
	var issue models.Issue
	if err := db.DB.First(&issue, issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrIssueNotFound
		}
		return nil, 0, err
	}

	var existing models.Repost
	err := db.DB.Where("issue_id = ? AND user_id = ?", issueID, userID).First(&existing).Error
	if err == nil {
		return nil, 0, ErrAlreadyReposted
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, err
	}

	if issue.UserID == userID {
		return nil, 0, ErrOwnIssue
	}

	repost := models.Repost{
		IssueID: issueID,
		UserID:  userID,
	}
	if err := db.DB.Create(&repost).Error; err != nil {
		// Two concurrent adds can both pass the pre-check; the unique
		// index catches the loser.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, 0, ErrAlreadyReposted
		}
		return nil, 0, err
	}

	count, err := s.CountForIssue(issueID)
	if err != nil {
		return nil, 0, err
	}
	return &repost, count, nil
}

// RemoveRepost deletes userID's endorsement and returns the updated count.
func (s *RepostService) RemoveRepost(issueID, userID uint) (int64, error) {
	var repost models.Repost
	err := db.DB.Where("issue_id = ? AND user_id = ?", issueID, userID).First(&repost).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrRepostNotFound
		}
		return 0, err
	}

	if err := db.DB.Delete(&repost).Error; err != nil {
		return 0, err
	}

	return s.CountForIssue(issueID)
}

// HasReposted reports whether userID has endorsed the issue. Unlike
// AddRepost/RemoveRepost it never fails for an unknown issue; the answer
// is simply false.
func (s *RepostService) HasReposted(issueID, userID uint) (bool, *models.Repost, error) {
	var repost models.Repost
	err := db.DB.Where("issue_id = ? AND user_id = ?", issueID, userID).First(&repost).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}
	return true, &repost, nil
}

// CountForIssue returns the current repost count for one issue.
func (s *RepostService) CountForIssue(issueID uint) (int64, error) {
	var count int64
	err := db.DB.Model(&models.Repost{}).Where("issue_id = ?", issueID).Count(&count).Error
	return count, err
}

// MaxRepostCount returns the highest per-issue repost count across all
// issues, never below 1 so the priority normalization stays well-defined.
func (s *RepostService) MaxRepostCount() (int, error) {
	var result struct {
		Cnt int64
	}
	err := db.DB.Model(&models.Repost{}).
		Select("COUNT(*) as cnt").
		Group("issue_id").
		Order("cnt DESC").
		Limit(1).
		Scan(&result).Error
	if err != nil {
		return 1, err
	}

	if result.Cnt < 1 {
		return 1, nil
	}
	return int(result.Cnt), nil
}

// CountsForIssues batch-resolves repost counts for a set of issues so a
// listing does not issue one count query per row.
func (s *RepostService) CountsForIssues(issueIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(issueIDs))
	if len(issueIDs) == 0 {
		return counts, nil
	}

	type countResult struct {
		IssueID uint
		Cnt     int64
	}
	var results []countResult
	err := db.DB.Model(&models.Repost{}).
		Select("issue_id, COUNT(*) as cnt").
		Where("issue_id IN ?", issueIDs).
		Group("issue_id").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		counts[r.IssueID] = r.Cnt
	}
	return counts, nil
}
