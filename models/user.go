package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsSuperuser  bool      `gorm:"not null;default:false" json:"is_superuser"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	Profile   Profile    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile"`
	Responses []Response `gorm:"foreignKey:UserID" json:"-"`
}

// Profile is the one-to-one extension of User carrying the VIP tier flag.
// It is created together with the user at registration.
type Profile struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	IsVIP  bool `gorm:"column:is_vip;not null;default:false" json:"is_vip"`
}
