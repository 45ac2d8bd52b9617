package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"erp/internal/domain/diff"
	"erp/internal/domain/model"
	repo "erp/internal/repository"
	"erp/internal/usecase/oplog"
)

type AdminOrderUsecase struct {
	tx   repo.TransactionManager
	logs OperationLogger
}

func NewAdminOrderUsecase(tx repo.TransactionManager, logs OperationLogger) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, logs: logs}
}

// nil の項目は変更しない。ShippingDate の "" は未定に戻す。
type UpdateOrderDetailInput struct {
	Quantity     *int64
	Status       *string
	ShippingDate *string
	SupplierNote *string
}

type OrderDetailOutput struct {
	ID           int64   `json:"id"`
	OrderID      int64   `json:"order_id"`
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Quantity     int64   `json:"quantity"`
	Status       string  `json:"status"`
	ShippingDate *string `json:"shipping_date"`
	SupplierNote string  `json:"supplier_note"`
}

type ReviewOrderInput struct {
	Status string
}

type OrderReviewOutput struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
}

// 明細1行の更新。ログはコミット後に Coalescer へ渡す。
func (u *AdminOrderUsecase) UpdateDetail(ctx context.Context, actor Actor, orderID int64, detailID int64, in UpdateOrderDetailInput) (OrderDetailOutput, error) {
	if !actor.valid() {
		return OrderDetailOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 || detailID <= 0 {
		return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var (
		order  model.Order
		before diff.Snapshot
		after  diff.Snapshot
		out    OrderDetailOutput
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		d, err := r.OrderDetails().FindByID(ctx, orderID, detailID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		details, err := r.OrderDetails().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		before = orderSnapshot(o, details)

		if err := applyDetailInput(&d, in); err != nil {
			return err
		}
		if err := r.OrderDetails().Update(ctx, d); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		for i := range details {
			if details[i].ID == d.ID {
				details[i] = d
			}
		}
		after = orderSnapshot(o, details)
		order = o
		out = toOrderDetailOutput(d)
		return nil
	})
	if err != nil {
		return OrderDetailOutput{}, err
	}

	u.logs.LogOperation(ctx, oplog.Operation{
		Table:     model.SubjectOrders,
		Kind:      model.OperationUpdate,
		SubjectID: order.ID,
		Old:       before,
		New:       after,
		ActorID:   actor.id(),
		ActorKind: actor.Kind,
	})
	return out, nil
}

// 注文の確認/退回（pending のときだけ）。audit として記録する。
func (u *AdminOrderUsecase) Review(ctx context.Context, actor Actor, orderID int64, in ReviewOrderInput) (OrderReviewOutput, error) {
	if !actor.valid() || actor.Kind != model.ActorAdmin {
		return OrderReviewOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderReviewOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	status := model.OrderStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if status != model.OrderStatusConfirmed && status != model.OrderStatusRejected {
		return OrderReviewOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var (
		order  model.Order
		before diff.Snapshot
		after  diff.Snapshot
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.Status != model.OrderStatusPending {
			return NewHTTPError(http.StatusConflict, "order already reviewed")
		}

		details, err := r.OrderDetails().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		before = orderSnapshot(o, details)

		if err := r.Orders().UpdateStatus(ctx, orderID, status); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		o.Status = status
		after = orderSnapshot(o, details)
		order = o
		return nil
	})
	if err != nil {
		return OrderReviewOutput{}, err
	}

	u.logs.LogOperation(ctx, oplog.Operation{
		Table:     model.SubjectOrders,
		Kind:      model.OperationAudit,
		SubjectID: order.ID,
		Old:       before,
		New:       after,
		ActorID:   actor.id(),
		ActorKind: actor.Kind,
	})
	return OrderReviewOutput{ID: order.ID, OrderNumber: order.OrderNumber, Status: string(order.Status)}, nil
}

func applyDetailInput(d *model.OrderDetail, in UpdateOrderDetailInput) error {
	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
		d.Quantity = *in.Quantity
	}
	if in.Status != nil {
		s := model.OrderStatus(strings.ToLower(strings.TrimSpace(*in.Status)))
		if !s.Valid() {
			return NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		d.Status = s
	}
	if in.ShippingDate != nil {
		v := strings.TrimSpace(*in.ShippingDate)
		if v == "" {
			d.ShippingDate = nil
		} else {
			t, err := time.Parse(diff.DateLayout, v)
			if err != nil {
				return NewHTTPError(http.StatusBadRequest, "invalid shipping_date")
			}
			d.ShippingDate = &t
		}
	}
	if in.SupplierNote != nil {
		d.SupplierNote = strings.TrimSpace(*in.SupplierNote)
	}
	return nil
}

func toOrderDetailOutput(d model.OrderDetail) OrderDetailOutput {
	out := OrderDetailOutput{
		ID:           d.ID,
		OrderID:      d.OrderID,
		ProductID:    d.ProductID,
		ProductName:  d.ProductName,
		Quantity:     d.Quantity,
		Status:       string(d.Status),
		SupplierNote: d.SupplierNote,
	}
	if d.ShippingDate != nil {
		s := d.ShippingDate.Format(diff.DateLayout)
		out.ShippingDate = &s
	}
	return out
}
