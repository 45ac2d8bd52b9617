package model

import "time"

// 出荷不可日（商品側のロック日）
type LockedDate struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex" json:"date"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
