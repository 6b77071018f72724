package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sex is the biological sex recorded on a user profile.
type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
	SexOther  Sex = "OTHER"
)

// Valid reports whether the sex is one of the known values.
func (s Sex) Valid() bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

// ActivityLevel describes how active a user is, used for TDEE estimation.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "SEDENTARY"
	ActivityLight      ActivityLevel = "LIGHT"
	ActivityModerate   ActivityLevel = "MODERATE"
	ActivityActive     ActivityLevel = "ACTIVE"
	ActivityVeryActive ActivityLevel = "VERY_ACTIVE"
)

// Multiplier returns the TDEE activity factor for the level.
func (a ActivityLevel) Multiplier() float64 {
	switch a {
	case ActivitySedentary:
		return 1.2
	case ActivityLight:
		return 1.375
	case ActivityModerate:
		return 1.55
	case ActivityActive:
		return 1.725
	case ActivityVeryActive:
		return 1.9
	default:
		return 1.2
	}
}

// Valid reports whether the level is one of the known values.
func (a ActivityLevel) Valid() bool {
	switch a {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityVeryActive:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	FirstName    string         `gorm:"size:100" json:"first_name"`
	LastName     string         `gorm:"size:100" json:"last_name"`

	// Profile attributes used for daily calorie estimation. All optional:
	// a user can track meals without ever completing the profile.
	Age           *int           `json:"age"`
	HeightCm      *float64       `json:"height_cm"`
	WeightKg      *float64       `json:"weight_kg"`
	Sex           *Sex           `gorm:"size:10" json:"sex"`
	ActivityLevel *ActivityLevel `gorm:"size:20" json:"activity_level"`

	// Derived via Mifflin-St Jeor, refreshed on profile updates.
	EstimatedDailyCalories *int `json:"estimated_daily_calories"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
