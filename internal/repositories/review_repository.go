package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/models"
)

var (
	ErrReviewNotFound     = errors.New("review not found")
	ErrGenerationNotFound = errors.New("ai generation not found")
)

// ReviewFilters narrows list queries.
type ReviewFilters struct {
	Status    models.ReviewStatus
	MinRating int
}

// ReviewStats is the per-business aggregation for the dashboard.
type ReviewStats struct {
	Total         int64                         `json:"total"`
	AverageRating float64                       `json:"average_rating"`
	ByStatus      map[models.ReviewStatus]int64 `json:"by_status"`
}

type ReviewRepository interface {
	Create(db *gorm.DB, review *models.Review) error
	FindByID(db *gorm.DB, id string) (*models.Review, error)
	// FindByIDIncludingDeleted looks past the soft-delete tombstone for
	// audit/moderation views.
	FindByIDIncludingDeleted(db *gorm.DB, id string) (*models.Review, error)
	FindByBusiness(db *gorm.DB, businessID string, filters ReviewFilters, page, pageSize int) ([]models.Review, int64, error)
	Update(db *gorm.DB, review *models.Review) error
	UpdateStatus(db *gorm.DB, reviewID string, status models.ReviewStatus) error
	SoftDelete(db *gorm.DB, reviewID string) error

	CreateGeneration(db *gorm.DB, generation *models.AIGeneration) error
	// FindCurrentGeneration returns the latest non-superseded generation.
	FindCurrentGeneration(db *gorm.DB, reviewID string) (*models.AIGeneration, error)
	UpdateGenerationStatus(db *gorm.DB, generationID string, status models.GenerationStatus) error
	FindGenerationsByReview(db *gorm.DB, reviewID string) ([]models.AIGeneration, error)

	Stats(db *gorm.DB, businessID string, since time.Time) (*ReviewStats, error)
	CountPublished(db *gorm.DB, businessID string) (int64, error)
}

type reviewRepository struct{}

func NewReviewRepository() ReviewRepository {
	return &reviewRepository{}
}

func (r *reviewRepository) Create(db *gorm.DB, review *models.Review) error {
	return db.Create(review).Error
}

func (r *reviewRepository) FindByID(db *gorm.DB, id string) (*models.Review, error) {
	var review models.Review
	err := db.Preload("Customer").First(&review, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByIDIncludingDeleted(db *gorm.DB, id string) (*models.Review, error) {
	var review models.Review
	err := db.Unscoped().Preload("Customer").First(&review, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByBusiness(db *gorm.DB, businessID string, filters ReviewFilters, page, pageSize int) ([]models.Review, int64, error) {
	query := db.Model(&models.Review{}).Where("business_id = ?", businessID)

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.MinRating > 0 {
		query = query.Where("rating >= ?", filters.MinRating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := query.Preload("Customer").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reviews).Error
	return reviews, total, err
}

func (r *reviewRepository) Update(db *gorm.DB, review *models.Review) error {
	result := db.Model(review).Updates(map[string]interface{}{
		"generated_review": review.GeneratedReview,
		"status":           review.Status,
		"rejection_note":   review.RejectionNote,
		"published_at":     review.PublishedAt,
		"moderated_by":     review.ModeratedBy,
		"moderated_at":     review.ModeratedAt,
		"moderation_note":  review.ModerationNote,
		"updated_at":       time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) UpdateStatus(db *gorm.DB, reviewID string, status models.ReviewStatus) error {
	result := db.Model(&models.Review{}).
		Where("id = ?", reviewID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) SoftDelete(db *gorm.DB, reviewID string) error {
	result := db.Where("id = ?", reviewID).Delete(&models.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// AI generations

func (r *reviewRepository) CreateGeneration(db *gorm.DB, generation *models.AIGeneration) error {
	return db.Create(generation).Error
}

func (r *reviewRepository) FindCurrentGeneration(db *gorm.DB, reviewID string) (*models.AIGeneration, error) {
	var generation models.AIGeneration
	err := db.Where("review_id = ? AND status NOT IN ?", reviewID,
		[]models.GenerationStatus{models.GenerationStatusRejected, models.GenerationStatusRegenerated}).
		Order("created_at DESC").
		First(&generation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenerationNotFound
		}
		return nil, err
	}
	return &generation, nil
}

func (r *reviewRepository) UpdateGenerationStatus(db *gorm.DB, generationID string, status models.GenerationStatus) error {
	result := db.Model(&models.AIGeneration{}).
		Where("id = ?", generationID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGenerationNotFound
	}
	return nil
}

func (r *reviewRepository) FindGenerationsByReview(db *gorm.DB, reviewID string) ([]models.AIGeneration, error) {
	var generations []models.AIGeneration
	err := db.Where("review_id = ?", reviewID).
		Order("created_at ASC").
		Find(&generations).Error
	return generations, err
}

// Aggregations

func (r *reviewRepository) Stats(db *gorm.DB, businessID string, since time.Time) (*ReviewStats, error) {
	base := db.Model(&models.Review{}).Where("business_id = ? AND created_at >= ?", businessID, since)

	stats := &ReviewStats{ByStatus: make(map[models.ReviewStatus]int64)}

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	var avg *float64
	if err := base.Session(&gorm.Session{}).Select("AVG(rating)").Scan(&avg).Error; err != nil {
		return nil, err
	}
	if avg != nil {
		stats.AverageRating = *avg
	}

	var rows []struct {
		Status models.ReviewStatus
		Count  int64
	}
	err := base.Session(&gorm.Session{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
	}

	return stats, nil
}

func (r *reviewRepository) CountPublished(db *gorm.DB, businessID string) (int64, error) {
	var count int64
	err := db.Model(&models.Review{}).
		Where("business_id = ? AND status = ?", businessID, models.ReviewStatusPublished).
		Count(&count).Error
	return count, err
}
