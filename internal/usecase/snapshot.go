package usecase

import (
	"erp/internal/domain/diff"
	"erp/internal/domain/model"
)

// 注文と全明細のスナップショット
func orderSnapshot(o model.Order, details []model.OrderDetail) diff.Snapshot {
	products := make([]any, 0, len(details))
	for _, d := range details {
		products = append(products, map[string]any{
			"detail_id":     d.ID,
			"product_id":    d.ProductID,
			"product_name":  d.ProductName,
			"quantity":      d.Quantity,
			"status":        string(d.Status),
			"shipping_date": d.ShippingDate,
			"supplier_note": d.SupplierNote,
		})
	}
	return diff.Snapshot{
		"id":           o.ID,
		"order_number": o.OrderNumber,
		"status":       string(o.Status),
		"products":     products,
	}
}

func lockedDateSnapshot(ld model.LockedDate) diff.Snapshot {
	return diff.Snapshot{
		"id":                ld.ID,
		"date":              ld.Date.Format(diff.DateLayout),
		diff.KeyRecordType: diff.RecordTypeLockedDate,
	}
}

// パスワードのハッシュは載せない。変わったかどうかだけ渡す。
func adminSnapshot(a model.Administrator, passwordChanged bool) diff.Snapshot {
	s := diff.Snapshot{
		"id":                  a.ID,
		"admin_account":       a.AdminAccount,
		"admin_name":          a.AdminName,
		"staff_no":            a.StaffNo,
		"permission_level_id": a.PermissionLevelID,
	}
	if passwordChanged {
		s[diff.KeyPasswordChanged] = true
	}
	return s
}
