package model

import "time"

// 注文明細（商品ごとの行）
type OrderDetail struct {
	ID           int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      int64       `gorm:"not null;index" json:"order_id"`
	ProductID    int64       `gorm:"not null;index" json:"product_id"`
	ProductName  string      `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity     int64       `gorm:"not null" json:"quantity"`
	Status       OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	ShippingDate *time.Time  `gorm:"type:date" json:"shipping_date"`
	SupplierNote string      `gorm:"type:text" json:"supplier_note"`
	CreatedAt    time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
