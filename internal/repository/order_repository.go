package repository

import (
	"context"

	"erp/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
}

// 注文明細の取得・更新
type OrderDetailRepository interface {
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderDetail, error)
	FindByID(ctx context.Context, orderID int64, detailID int64) (model.OrderDetail, error)
	Update(ctx context.Context, d model.OrderDetail) error
}
