package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/talkincode/slopeselector/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a recommendation set does not exist
var ErrNotFound = errors.New("recommendation set not found")

const insertBatchSize = 100

// Repository persists recommendation trees
type Repository interface {
	// EnsureUser creates the user row if it does not exist yet
	EnsureUser(ctx context.Context, userID string) error

	// CreateSet writes the set and its whole subtree in one transaction
	CreateSet(ctx context.Context, set *domain.RecommendationSet) error

	// GetSet loads a set with its subtree in stored order
	GetSet(ctx context.Context, id string) (*domain.RecommendationSet, error)

	// ListByUser returns the user's sets without subtree, newest first
	ListByUser(ctx context.Context, userID string) ([]domain.RecommendationSet, error)

	// DeleteSet removes a set and everything below it
	DeleteSet(ctx context.Context, id string) error

	// ListCreatedBefore returns up to limit set ids older than cutoff
	ListCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]string, error)

	// StoreRules returns the store name rules ordered by sort
	StoreRules(ctx context.Context) ([]domain.StoreRule, error)
}

// GormRepository is the GORM implementation of Repository
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM-based repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) EnsureUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.User{ID: userID, CreatedAt: time.Now().UTC()}).Error
}

func (r *GormRepository) CreateSet(ctx context.Context, set *domain.RecommendationSet) error {
	var (
		categories []domain.Category
		products   []domain.Product
		details    []domain.ProductDetail
		links      []domain.StoreLink
	)
	for _, c := range set.Categories {
		for _, p := range c.Products {
			details = append(details, p.Details...)
			links = append(links, p.StoreLinks...)
			p.Details, p.StoreLinks = nil, nil
			products = append(products, p)
		}
		c.Products = nil
		categories = append(categories, c)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(set).Error; err != nil {
			return err
		}
		if len(categories) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(&categories, insertBatchSize).Error; err != nil {
				return err
			}
		}
		if len(products) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(&products, insertBatchSize).Error; err != nil {
				return err
			}
		}
		if len(details) > 0 {
			if err := tx.CreateInBatches(&details, insertBatchSize).Error; err != nil {
				return err
			}
		}
		if len(links) > 0 {
			if err := tx.CreateInBatches(&links, insertBatchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *GormRepository) GetSet(ctx context.Context, id string) (*domain.RecommendationSet, error) {
	var set domain.RecommendationSet
	err := r.db.WithContext(ctx).
		Preload("Categories", byPosition).
		Preload("Categories.Products", byPosition).
		Preload("Categories.Products.Details", byPosition).
		Preload("Categories.Products.StoreLinks", byPosition).
		Where("id = ?", id).
		First(&set).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string) ([]domain.RecommendationSet, error) {
	var sets []domain.RecommendationSet
	err := r.db.WithContext(ctx).
		Select("id", "user_id", "prompt_text", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sets).Error
	return sets, err
}

func (r *GormRepository) DeleteSet(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var categoryIDs, productIDs []string
		if err := tx.Model(&domain.Category{}).
			Where("recommendation_set_id = ?", id).
			Pluck("id", &categoryIDs).Error; err != nil {
			return err
		}
		if len(categoryIDs) > 0 {
			if err := tx.Model(&domain.Product{}).
				Where("category_id IN ?", categoryIDs).
				Pluck("id", &productIDs).Error; err != nil {
				return err
			}
		}
		if len(productIDs) > 0 {
			if err := tx.Where("product_id IN ?", productIDs).Delete(&domain.ProductDetail{}).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id IN ?", productIDs).Delete(&domain.StoreLink{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", productIDs).Delete(&domain.Product{}).Error; err != nil {
				return err
			}
		}
		if len(categoryIDs) > 0 {
			if err := tx.Where("id IN ?", categoryIDs).Delete(&domain.Category{}).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id = ?", id).Delete(&domain.RecommendationSet{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListCreatedBefore compares in UTC, sqlite stores timestamps as text
func (r *GormRepository) ListCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.RecommendationSet{}).
		Where("created_at < ?", cutoff.UTC()).
		Order("created_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *GormRepository) StoreRules(ctx context.Context) ([]domain.StoreRule, error) {
	var rules []domain.StoreRule
	err := r.db.WithContext(ctx).Order("sort ASC, id ASC").Find(&rules).Error
	return rules, err
}
