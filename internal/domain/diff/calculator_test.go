package diff_test

import (
	"encoding/json"
	"testing"
	"time"

	"erp/internal/domain/diff"
	"erp/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerSnapshot() diff.Snapshot {
	return diff.Snapshot{
		"id":                 int64(7),
		"username":           "acme",
		"company_name":       "Acme Foods",
		"contact_person":     "Lin",
		"phone":              "02-1234",
		"email":              "buyer@acme.test",
		"address":            "Taipei",
		"viewable_products":  []string{"Tofu", "Soy Milk"},
		"remark":             "",
		"reorder_limit_days": 0,
		"line_users": []any{
			map[string]any{"line_user_id": "U1", "display_name": "Amy"},
			map[string]any{"line_user_id": "U2", "display_name": "Ben"},
		},
		"line_groups": []any{
			map[string]any{"line_group_id": "G1", "group_name": "Buyers"},
		},
	}
}

func productSnapshot() diff.Snapshot {
	return diff.Snapshot{
		"id":                  int64(3),
		"name":                "Tofu",
		"description":         "firm",
		"min_order_qty":       1,
		"max_order_qty":       100,
		"product_unit":        "box",
		"shipping_time":       3,
		"special_date":        false,
		"status":              "active",
		"image_original_name": "tofu.png",
		"image_url":           "uploads/2024/ab12cd.png",
	}
}

func adminSnapshot() diff.Snapshot {
	return diff.Snapshot{
		"admin_account":         "ops01",
		"admin_name":            "Chen",
		"staff_no":              "S-001",
		"permission_level_id":   2,
		"permission_level_name": "manager",
		"admin_password":        "$2a$10$hash",
	}
}

func orderSnapshot() diff.Snapshot {
	return diff.Snapshot{
		"order_number": "T1001",
		"status":       "pending",
		"products": []any{
			map[string]any{"detail_id": int64(11), "product_name": "Tofu", "quantity": 5, "status": "pending", "shipping_date": nil, "supplier_note": ""},
			map[string]any{"detail_id": int64(12), "product_name": "Soy Milk", "quantity": 2, "status": "pending", "shipping_date": nil, "supplier_note": ""},
		},
	}
}

func clone(s diff.Snapshot) diff.Snapshot {
	b, _ := json.Marshal(s)
	var out map[string]any
	_ = json.Unmarshal(b, &out)
	return diff.Snapshot(out)
}

func TestRegistry_Update_NoChange_Suppressed(t *testing.T) {
	r := diff.NewRegistry()

	cases := map[model.SubjectTable]diff.Snapshot{
		model.SubjectCustomers:      customerSnapshot(),
		model.SubjectProducts:       productSnapshot(),
		model.SubjectAdministrators: adminSnapshot(),
		model.SubjectOrders:         orderSnapshot(),
	}
	for table, snap := range cases {
		doc, err := r.Compute(table, model.OperationUpdate, snap, clone(snap))
		assert.NoError(t, err, table)
		assert.Nil(t, doc, table)
	}
}

func TestRegistry_Update_SingleField(t *testing.T) {
	r := diff.NewRegistry()

	t.Run("customer", func(t *testing.T) {
		after := customerSnapshot()
		after["company_name"] = "Acme Trading"
		doc, err := r.Compute(model.SubjectCustomers, model.OperationUpdate, customerSnapshot(), after)
		require.NoError(t, err)
		d := doc.(*diff.CustomerDiff)
		assert.Equal(t, diff.Changes{"company_name": {Before: "Acme Foods", After: "Acme Trading"}}, d.Customer.Changes)
	})

	t.Run("product", func(t *testing.T) {
		after := productSnapshot()
		after["max_order_qty"] = "200"
		doc, err := r.Compute(model.SubjectProducts, model.OperationUpdate, productSnapshot(), after)
		require.NoError(t, err)
		d := doc.(*diff.ProductDiff)
		require.NotNil(t, d.Product)
		assert.Equal(t, diff.Changes{"max_order_qty": {Before: int64(100), After: int64(200)}}, d.Product.Changes)
	})

	t.Run("admin", func(t *testing.T) {
		after := adminSnapshot()
		after["staff_no"] = "S-002"
		doc, err := r.Compute(model.SubjectAdministrators, model.OperationUpdate, adminSnapshot(), after)
		require.NoError(t, err)
		d := doc.(*diff.AdminDiff)
		assert.Equal(t, diff.Changes{"staff_no": {Before: "S-001", After: "S-002"}}, d.Changes)
		assert.Equal(t, "S-002", d.Admin.StaffNo)
	})

	t.Run("order line", func(t *testing.T) {
		after := orderSnapshot()
		after["products"].([]any)[0].(map[string]any)["quantity"] = 10
		doc, err := r.Compute(model.SubjectOrders, model.OperationUpdate, orderSnapshot(), after)
		require.NoError(t, err)
		d := doc.(*diff.OrderDiff)
		require.Len(t, d.Products, 1)
		assert.Equal(t, int64(11), d.Products[0].DetailID)
		assert.Equal(t, diff.Changes{"quantity": {Before: int64(5), After: int64(10)}}, d.Products[0].Changes)
		assert.Nil(t, d.Status)
	})
}

func TestCustomer_LineUsers_SetSemantics(t *testing.T) {
	r := diff.NewRegistry()

	reordered := customerSnapshot()
	reordered["line_users"] = []any{
		map[string]any{"line_user_id": "U2", "display_name": "Ben"},
		map[string]any{"line_user_id": "U1", "display_name": "Amy"},
	}
	doc, err := r.Compute(model.SubjectCustomers, model.OperationUpdate, customerSnapshot(), reordered)
	require.NoError(t, err)
	assert.Nil(t, doc)

	added := customerSnapshot()
	added["line_users"] = append(added["line_users"].([]any), map[string]any{"line_user_id": "U3", "display_name": "Cai"})
	doc, err = r.Compute(model.SubjectCustomers, model.OperationUpdate, customerSnapshot(), added)
	require.NoError(t, err)
	d := doc.(*diff.CustomerDiff)
	require.Len(t, d.Customer.Changes, 1)
	ch := d.Customer.Changes["line_users"]
	assert.Equal(t, []string{"Amy", "Ben"}, ch.Before)
	assert.Equal(t, []string{"Amy", "Ben", "Cai"}, ch.After)
	assert.Equal(t, []string{"Amy", "Ben", "Cai"}, d.Customer.LineUsers)
	assert.Empty(t, d.Customer.LineGroups)
}

func TestCustomer_LineChanges_Override(t *testing.T) {
	r := diff.NewRegistry()

	after := customerSnapshot()
	after["line_changes"] = map[string]any{
		"line_groups": map[string]any{
			"before": []any{"G1"},
			"after":  []any{},
		},
	}
	doc, err := r.Compute(model.SubjectCustomers, model.OperationUpdate, customerSnapshot(), after)
	require.NoError(t, err)
	d := doc.(*diff.CustomerDiff)
	assert.Equal(t, diff.Change{Before: []string{"G1"}, After: []string{}}, d.Customer.Changes["line_groups"])
	assert.Empty(t, d.Customer.LineGroups)
	assert.Empty(t, d.Customer.LineUsers)
}

func TestCustomer_ViewableProducts_ComparedAsSet(t *testing.T) {
	r := diff.NewRegistry()

	after := customerSnapshot()
	after["viewable_products"] = []any{"Soy Milk", "Tofu"}
	doc, err := r.Compute(model.SubjectCustomers, model.OperationUpdate, customerSnapshot(), after)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestCustomer_ReorderLimit_UnlimitedDisplay(t *testing.T) {
	r := diff.NewRegistry()

	after := customerSnapshot()
	after["reorder_limit_days"] = "14"
	doc, err := r.Compute(model.SubjectCustomers, model.OperationUpdate, customerSnapshot(), after)
	require.NoError(t, err)
	d := doc.(*diff.CustomerDiff)
	assert.Equal(t, diff.Change{Before: diff.UnlimitedDisplay, After: int64(14)}, d.Customer.Changes["reorder_limit_days"])
}

func TestCustomer_Delete_KeepsBindings(t *testing.T) {
	r := diff.NewRegistry()

	doc, err := r.Compute(model.SubjectCustomers, model.OperationDelete, customerSnapshot(), nil)
	require.NoError(t, err)

	raw, err := diff.Encode(doc)
	require.NoError(t, err)

	var decoded struct {
		Message struct {
			Customer struct {
				LineUsers  []string `json:"line_users"`
				LineGroups []string `json:"line_groups"`
			} `json:"customer"`
		} `json:"message"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded.Message.Customer.LineUsers, 2)
	assert.Len(t, decoded.Message.Customer.LineGroups, 1)
}

func TestPassword_Masked(t *testing.T) {
	r := diff.NewRegistry()

	after := adminSnapshot()
	after["admin_password"] = "$2a$10$otherhash"
	after["password_changed"] = true
	doc, err := r.Compute(model.SubjectAdministrators, model.OperationUpdate, adminSnapshot(), after)
	require.NoError(t, err)
	d := doc.(*diff.AdminDiff)
	assert.True(t, d.PasswordChanged)
	assert.Equal(t, diff.Change{Before: diff.MaskedDisplay, After: diff.MaskedDisplay}, d.Changes["admin_password"])

	raw, err := diff.Encode(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "otherhash")
	assert.NotContains(t, string(raw), "$2a$")
}

func TestProduct_ShippingTime_TypeNormalized(t *testing.T) {
	r := diff.NewRegistry()

	before := productSnapshot()
	before["shipping_time"] = "3"
	after := productSnapshot()
	after["shipping_time"] = 3
	doc, err := r.Compute(model.SubjectProducts, model.OperationUpdate, before, after)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestProduct_Image_ComparedByOriginalName(t *testing.T) {
	r := diff.NewRegistry()

	moved := productSnapshot()
	moved["image_url"] = "s3://bucket/other/path.png"
	doc, err := r.Compute(model.SubjectProducts, model.OperationUpdate, productSnapshot(), moved)
	require.NoError(t, err)
	assert.Nil(t, doc)

	replaced := productSnapshot()
	replaced["image_original_name"] = "tofu-v2.png"
	doc, err = r.Compute(model.SubjectProducts, model.OperationUpdate, productSnapshot(), replaced)
	require.NoError(t, err)
	d := doc.(*diff.ProductDiff)
	assert.Equal(t, diff.Change{Before: "tofu.png", After: "tofu-v2.png"}, d.Product.Changes["image"])
}

func TestProduct_EmptyValues_AreEquivalent(t *testing.T) {
	r := diff.NewRegistry()

	before := productSnapshot()
	before["description"] = nil
	after := productSnapshot()
	after["description"] = "  "
	doc, err := r.Compute(model.SubjectProducts, model.OperationUpdate, before, after)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestProduct_LockAndUnlockDate(t *testing.T) {
	r := diff.NewRegistry()
	locked := diff.Snapshot{"id": int64(5), "date": time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "record_type": "locked_date"}

	doc, err := r.Compute(model.SubjectProducts, model.OperationLockDate, nil, locked)
	require.NoError(t, err)
	d := doc.(*diff.ProductDiff)
	assert.Equal(t, &diff.LockedDateSection{ID: 5, Date: "2025-06-01", Action: diff.LockAction}, d.LockedDate)

	doc, err = r.Compute(model.SubjectProducts, model.OperationUnlockDate, locked, nil)
	require.NoError(t, err)
	d = doc.(*diff.ProductDiff)
	assert.Equal(t, diff.UnlockAction, d.LockedDate.Action)
	assert.Equal(t, "2025-06-01", d.LockedDate.Date)
}

func TestOrder_Create(t *testing.T) {
	r := diff.NewRegistry()

	doc, err := r.Compute(model.SubjectOrders, model.OperationCreate, nil, orderSnapshot())
	require.NoError(t, err)

	raw, err := diff.Encode(doc)
	require.NoError(t, err)

	var decoded struct {
		Message struct {
			OrderNumber string           `json:"order_number"`
			Products    []map[string]any `json:"products"`
			Status      string           `json:"status"`
		} `json:"message"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "T1001", decoded.Message.OrderNumber)
	assert.Len(t, decoded.Message.Products, 2)
	assert.Equal(t, "待確認", decoded.Message.Status)
}

func TestOrder_Audit_StatusTransition(t *testing.T) {
	r := diff.NewRegistry()

	after := orderSnapshot()
	after["status"] = "confirmed"
	doc, err := r.Compute(model.SubjectOrders, model.OperationAudit, orderSnapshot(), after)
	require.NoError(t, err)
	d := doc.(*diff.OrderDiff)
	require.NotNil(t, d.Status)
	assert.Equal(t, &diff.Change{Before: "待確認", After: "已確認"}, d.Status.Change)
	assert.Empty(t, d.Products)
}

func TestOrder_ShippingDate_PendingDisplay(t *testing.T) {
	r := diff.NewRegistry()

	after := orderSnapshot()
	after["products"].([]any)[1].(map[string]any)["shipping_date"] = "2024-12-25"
	doc, err := r.Compute(model.SubjectOrders, model.OperationUpdate, orderSnapshot(), after)
	require.NoError(t, err)
	d := doc.(*diff.OrderDiff)
	require.Len(t, d.Products, 1)
	assert.Equal(t, diff.Change{Before: "待確認", After: "2024-12-25"}, d.Products[0].Changes["shipping_date"])
}

func TestRegistry_Errors(t *testing.T) {
	r := diff.NewRegistry()

	_, err := r.Compute(model.SubjectTable("invoices"), model.OperationUpdate, nil, nil)
	assert.ErrorIs(t, err, diff.ErrUnknownTable)

	_, err = r.Compute(model.SubjectCustomers, model.OperationUpdate, nil, customerSnapshot())
	assert.ErrorIs(t, err, diff.ErrMalformedSnapshot)

	_, err = r.Compute(model.SubjectAdministrators, model.OperationLockDate, nil, adminSnapshot())
	assert.ErrorIs(t, err, diff.ErrUnsupportedOperation)

	bad := orderSnapshot()
	bad["products"] = "not a list"
	_, err = r.Compute(model.SubjectOrders, model.OperationCreate, nil, bad)
	assert.ErrorIs(t, err, diff.ErrMalformedSnapshot)
}

func TestChange_RendersTime(t *testing.T) {
	ch := diff.Change{Before: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), After: nil}
	b, err := json.Marshal(ch)
	require.NoError(t, err)
	assert.JSONEq(t, `{"before":"2024-01-02 03:04:05","after":null}`, string(b))
}
