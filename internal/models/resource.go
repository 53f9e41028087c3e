package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	CategoryExamSchedule        = "exam_schedule"
	CategoryFeeStructure        = "fee_structure"
	CategorySeatingArrangements = "seating_arrangements"
	CategorySyllabus            = "syllabus"
)

// ResourceCategory holds the harvested PDF links for one section of the
// college site. Links is a JSON object of link name -> absolute URL.
type ResourceCategory struct {
	UUID      uuid.UUID      `gorm:"type:uuid;primaryKey;" json:"uuid"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	Links     datatypes.JSON `json:"links"`
	UpdatedAt time.Time      `json:"updated_at"`
}
