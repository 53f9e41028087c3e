package repo

import (
	"encoding/json"
	"time"

	"ngmc-chatbot-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResourceRepo represents the repository for the resource link catalog
type ResourceRepo struct {
	db *gorm.DB
}

type ResourceRepoInterface interface {
	UpsertCategory(name string, links map[string]string) error
	GetCategory(name string) (map[string]string, error)
	GetAllCategories() ([]models.ResourceCategory, error)
}

func NewResourceRepository(db *gorm.DB) ResourceRepoInterface {
	return &ResourceRepo{db: db}
}

// UpsertCategory replaces the link set of a category, creating the row on
// first harvest.
func (r *ResourceRepo) UpsertCategory(name string, links map[string]string) error {
	payload, err := json.Marshal(links)
	if err != nil {
		return err
	}

	category := models.ResourceCategory{
		UUID:      uuid.New(),
		Name:      name,
		Links:     payload,
		UpdatedAt: time.Now(),
	}

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"links", "updated_at"}),
	}).Create(&category).Error
}

func (r *ResourceRepo) GetCategory(name string) (map[string]string, error) {
	var category models.ResourceCategory
	if err := r.db.First(&category, "name = ?", name).Error; err != nil {
		return nil, err
	}

	links := map[string]string{}
	if err := json.Unmarshal(category.Links, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// GetAllCategories returns the whole catalog.
func (r *ResourceRepo) GetAllCategories() ([]models.ResourceCategory, error) {
	var categories []models.ResourceCategory
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}
