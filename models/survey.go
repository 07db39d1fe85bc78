package models

import "time"

type Survey struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	// No column defaults here: false, 0 and 0 are legitimate stored values
	// and a default tag would make GORM omit them from the INSERT. The
	// create handler applies the 10-slot/24-hour/active fallbacks.
	Active   bool `gorm:"not null" json:"active"`
	MaxSlots int  `gorm:"not null" json:"max_slots"`
	// SlotDurationHours is stored and surfaced but never read to expire a
	// response; it is informational metadata.
	SlotDurationHours int `gorm:"not null" json:"slot_duration_hours"`

	Questions []Question `gorm:"foreignKey:SurveyID" json:"questions,omitempty"`
	Responses []Response `gorm:"foreignKey:SurveyID" json:"-"`
}

// AvailableSlots returns how many response slots remain given the recorded
// response count. Never negative. Advisory only: submissions are not rejected
// when it reaches zero.
func (s *Survey) AvailableSlots(used int64) int {
	remaining := s.MaxSlots - int(used)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HasAvailableSlot reports whether at least one slot remains.
func (s *Survey) HasAvailableSlot(used int64) bool {
	return s.AvailableSlots(used) > 0
}
