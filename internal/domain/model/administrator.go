package model

import "time"

type Administrator struct {
	ID                int64     `gorm:"primaryKey;autoIncrement"`
	AdminAccount      string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	AdminName         string    `gorm:"type:varchar(64);not null"`
	StaffNo           string    `gorm:"type:varchar(32)"`
	PasswordHash      string    `gorm:"column:admin_password;not null"`
	PermissionLevelID int64     `gorm:"not null;default:1"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
