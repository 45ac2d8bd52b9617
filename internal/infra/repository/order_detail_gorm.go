package repository

import (
	"context"
	"errors"

	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"gorm.io/gorm"
)

type OrderDetailGormRepository struct {
	db *gorm.DB
}

func NewOrderDetailGormRepository(db *gorm.DB) *OrderDetailGormRepository {
	return &OrderDetailGormRepository{db: db}
}

func (r *OrderDetailGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderDetail, error) {
	var items []model.OrderDetail
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.OrderDetail{}, err
	}
	return items, nil
}

func (r *OrderDetailGormRepository) FindByID(ctx context.Context, orderID int64, detailID int64) (model.OrderDetail, error) {
	var d model.OrderDetail
	err := r.db.WithContext(ctx).
		Where("id = ? AND order_id = ?", detailID, orderID).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.OrderDetail{}, repo.ErrNotFound
	}
	if err != nil {
		return model.OrderDetail{}, err
	}
	return d, nil
}

// 数量・ステータス・出荷日・備考だけ更新する
func (r *OrderDetailGormRepository) Update(ctx context.Context, d model.OrderDetail) error {
	res := r.db.WithContext(ctx).Model(&model.OrderDetail{}).
		Where("id = ? AND order_id = ?", d.ID, d.OrderID).
		Updates(map[string]any{
			"quantity":      d.Quantity,
			"status":        d.Status,
			"shipping_date": d.ShippingDate,
			"supplier_note": d.SupplierNote,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
