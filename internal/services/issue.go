package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"civicdesk/internal/db"
	"civicdesk/internal/models"
	"civicdesk/internal/utils"

	"gorm.io/gorm"
)

// SortByPriority asks for the in-memory priority sort instead of a
// persisted column.
const SortByPriority = "priority"

// sortColumns maps the accepted sortBy values onto persisted columns.
// Priority is not here on purpose: it only exists after scoring.
var sortColumns = map[string]string{
	"createdAt":        "created_at",
	"status":           "status",
	"importanceRating": "importance_rating",
	"title":            "title",
}

// IssueService assembles issues with their repost counts and computed
// priority, and supports priority-based ordering on top of the usual
// column sorts.
type IssueService struct {
	reposts *RepostService
}

func NewIssueService() *IssueService {
	return &IssueService{
		reposts: NewRepostService(),
	}
}

type CreateIssueInput struct {
	Title            string
	Description      string
	Image            string
	CategoryID       uint
	ImportanceRating int
}

// ListOptions narrows and orders a listing. OwnerID is set for
// non-privileged callers who may only see their own issues.
type ListOptions struct {
	OwnerID    *uint
	Status     *int
	CategoryID *uint
	SortBy     string
	Order      string
}

// Create validates and stores a new issue for userID. Status always
// starts at pending; the importance rating is fixed at creation time.
func (s *IssueService) Create(userID uint, in CreateIssueInput) (*models.Issue, error) {
	if in.Title == "" || in.Description == "" || in.CategoryID == 0 {
		return nil, Validationf("Title, description, and categoryId are required")
	}
	if in.ImportanceRating < 0 || in.ImportanceRating > 5 {
		return nil, Validationf("Importance rating must be between 0 and 5")
	}

	description := utils.SanitizeText(in.Description)
	if description == "" {
		return nil, Validationf("Title, description, and categoryId are required")
	}

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.category(in.CategoryID); err != nil {
		return nil, err
	}

	issue := models.Issue{
		Title:            utils.SanitizeText(in.Title),
		Description:      description,
		Image:            in.Image,
		ImportanceRating: in.ImportanceRating,
		Status:           models.IssueStatusPending,
		CategoryID:       in.CategoryID,
		UserID:           userID,
	}
	if err := db.DB.Create(&issue).Error; err != nil {
		return nil, err
	}

	return s.Get(issue.ID)
}

// List loads issues per the options, attaches repost counts and priority
// breakdowns, and orders the result. The corpus-wide max repost count is
// snapshotted once per call.
func (s *IssueService) List(opts ListOptions) ([]models.Issue, error) {
	query := db.DB.Model(&models.Issue{}).Preload("Category").Preload("User")

	if opts.OwnerID != nil {
		query = query.Where("user_id = ?", *opts.OwnerID)
	}
	if opts.Status != nil {
		query = query.Where("status = ?", *opts.Status)
	}
	if opts.CategoryID != nil {
		query = query.Where("category_id = ?", *opts.CategoryID)
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	order := opts.Order
	if order != "asc" {
		order = "desc"
	}

	byPriority := sortBy == SortByPriority
	if byPriority {
		// Fetch in the default order; priority is sorted after scoring.
		query = query.Order("created_at DESC")
	} else {
		column, ok := sortColumns[sortBy]
		if !ok {
			return nil, Validationf("Unknown sortBy value: %s", sortBy)
		}
		query = query.Order(fmt.Sprintf("%s %s", column, order))
	}

	var issues []models.Issue
	if err := query.Find(&issues).Error; err != nil {
		return nil, err
	}

	if err := s.attachPriority(issues); err != nil {
		return nil, err
	}

	if byPriority {
		// Stable, so equal scores keep their fetch order.
		sort.SliceStable(issues, func(i, j int) bool {
			if order == "asc" {
				return issues[i].Priority.TotalPriority < issues[j].Priority.TotalPriority
			}
			return issues[i].Priority.TotalPriority > issues[j].Priority.TotalPriority
		})
	}

	return issues, nil
}

// Get loads one issue with its repost count and priority breakdown.
func (s *IssueService) Get(id uint) (*models.Issue, error) {
	var issue models.Issue
	err := db.DB.Preload("Category").Preload("User").First(&issue, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, err
	}

	issues := []models.Issue{issue}
	if err := s.attachPriority(issues); err != nil {
		return nil, err
	}
	return &issues[0], nil
}

// UpdateStatus moves an issue along the triage scale. Admin only; the
// handler enforces the role, this enforces the range.
func (s *IssueService) UpdateStatus(id uint, status int) (*models.Issue, error) {
	if status < 0 || status > 5 {
		return nil, Validationf("Status must be between 0 and 5 (0=pending, 5=resolved)")
	}

	var issue models.Issue
	if err := db.DB.First(&issue, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, err
	}

	if err := db.DB.Model(&issue).Update("status", status).Error; err != nil {
		return nil, err
	}

	return s.Get(id)
}

// attachPriority fills RepostCount and Priority on every issue, scoring
// against a single snapshot of the corpus-wide max.
func (s *IssueService) attachPriority(issues []models.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	issueIDs := make([]uint, len(issues))
	for i, issue := range issues {
		issueIDs[i] = issue.ID
	}

	counts, err := s.reposts.CountsForIssues(issueIDs)
	if err != nil {
		return err
	}

	maxReposts, err := s.reposts.MaxRepostCount()
	if err != nil {
		return err
	}

	for i := range issues {
		count := int(counts[issues[i].ID])
		issues[i].RepostCount = count
		breakdown := utils.CalculatePriority(issues[i].ImportanceRating, count, maxReposts)
		issues[i].Priority = &breakdown
	}
	return nil
}

// category resolves a category through the in-process cache; the catalog
// is seeded once and effectively immutable.
func (s *IssueService) category(id uint) (*models.Category, error) {
	cacheKey := fmt.Sprintf("category:%d", id)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if category, ok := cached.(*models.Category); ok {
			return category, nil
		}
	}

	var category models.Category
	if err := db.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	utils.GetCache().Set(cacheKey, &category, 10*time.Minute)
	return &category, nil
}
