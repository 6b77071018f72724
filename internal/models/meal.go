package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONBStringArray stores a string slice as JSONB (TEXT on sqlite).
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// MealType classifies when a meal was eaten.
type MealType string

const (
	MealTypeBreakfast MealType = "BREAKFAST"
	MealTypeLunch     MealType = "LUNCH"
	MealTypeDinner    MealType = "DINNER"
	MealTypeSnack     MealType = "SNACK"
)

// Valid reports whether the meal type is one of the known values.
func (m MealType) Valid() bool {
	switch m {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}

// AnalysisStatus is the lifecycle state of a meal's nutrition analysis.
type AnalysisStatus string

const (
	AnalysisPending   AnalysisStatus = "PENDING"
	AnalysisCompleted AnalysisStatus = "COMPLETED"
	AnalysisFailed    AnalysisStatus = "FAILED"
)

// Meal is one user-submitted eating event. Nutrition fields stay nil until
// analysis completes; nil means unknown, never zero.
type Meal struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	MealTime  time.Time `gorm:"not null;index" json:"meal_time"`
	CreatedAt time.Time `json:"created_at"`

	MealType    *MealType `gorm:"size:20" json:"meal_type"`
	ObjectName  *string   `gorm:"size:500" json:"-"`
	Description string    `gorm:"size:500" json:"description"`

	ServingSize    *string          `gorm:"size:255" json:"serving_size"`
	Calories       *int             `json:"calories"`
	ProteinG       *float64         `json:"protein_g"`
	FatG           *float64         `json:"fat_g"`
	SaturatedFatG  *float64         `json:"saturated_fat_g"`
	CarbohydratesG *float64         `json:"carbohydrates_g"`
	FiberG         *float64         `json:"fiber_g"`
	SugarG         *float64         `json:"sugar_g"`
	SodiumMg       *float64         `json:"sodium_mg"`
	CholesterolMg  *float64         `json:"cholesterol_mg"`
	Ingredients    JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"ingredients"`
	Allergens      JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"allergens"`
	HealthNotes    *string          `gorm:"size:1000" json:"health_notes"`
	Confidence     *float64         `json:"confidence"`

	AnalysisStatus AnalysisStatus `gorm:"size:20;not null;default:'PENDING'" json:"analysis_status"`
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.MealTime.IsZero() {
		m.MealTime = time.Now()
	}
	return nil
}

// HasImage reports whether the meal has a stored image object.
func (m *Meal) HasImage() bool {
	return m.ObjectName != nil && *m.ObjectName != ""
}
