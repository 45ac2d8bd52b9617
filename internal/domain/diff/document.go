package diff

import (
	"encoding/json"
	"fmt"

	"erp/internal/domain/model"
)

// テーブルごとの差分ドキュメント
type Document interface {
	Table() model.SubjectTable
	// 何も変わっていなければ true（ログを書かない）
	Empty() bool
}

// 保存時の外側の形
type envelope struct {
	Message Document `json:"message"`
}

// Encode は保存用の JSON を返す。日時は "YYYY-MM-DD HH:MM:SS"。
func Encode(doc Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("encode diff: nil document")
	}
	b, err := json.Marshal(envelope{Message: doc})
	if err != nil {
		return nil, fmt.Errorf("encode diff: %w", err)
	}
	return b, nil
}

// ---- orders ----

type OrderLine struct {
	Name     string  `json:"name"`
	DetailID int64   `json:"detail_id"`
	Changes  Changes `json:"changes"`
}

// 作成・削除ではステータス文字列、更新・審査では before/after
type OrderStatus struct {
	Value  string
	Change *Change
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	if s.Change != nil {
		return json.Marshal(*s.Change)
	}
	return json.Marshal(s.Value)
}

type OrderDiff struct {
	OrderNumber string       `json:"order_number"`
	Products    []OrderLine  `json:"products"`
	Status      *OrderStatus `json:"status,omitempty"`

	// 作成・削除は常に記録する
	whole bool
}

func (d *OrderDiff) Table() model.SubjectTable { return model.SubjectOrders }

func (d *OrderDiff) Empty() bool {
	if d == nil {
		return true
	}
	if d.whole {
		return false
	}
	if d.Status != nil && d.Status.Change != nil {
		return false
	}
	for _, p := range d.Products {
		if !p.Changes.Empty() {
			return false
		}
	}
	return true
}

// Merge は同じ注文への後続の差分を取り込む。明細は detail_id 単位、
// 項目は後勝ち、before は最初の値のまま。
func (d *OrderDiff) Merge(next *OrderDiff) {
	if next == nil {
		return
	}
	if next.OrderNumber != "" {
		d.OrderNumber = next.OrderNumber
	}
	index := make(map[int64]int, len(d.Products))
	for i, p := range d.Products {
		index[p.DetailID] = i
	}
	for _, p := range next.Products {
		i, ok := index[p.DetailID]
		if !ok {
			index[p.DetailID] = len(d.Products)
			d.Products = append(d.Products, OrderLine{Name: p.Name, DetailID: p.DetailID, Changes: p.Changes.Merge(nil)})
			continue
		}
		if p.Name != "" {
			d.Products[i].Name = p.Name
		}
		d.Products[i].Changes = d.Products[i].Changes.Merge(p.Changes)
	}

	// 変更がなくなった明細は落とす
	kept := d.Products[:0]
	for _, p := range d.Products {
		if !p.Changes.Empty() {
			kept = append(kept, p)
		}
	}
	d.Products = kept

	if next.Status != nil && next.Status.Change != nil {
		if d.Status == nil || d.Status.Change == nil {
			c := *next.Status.Change
			d.Status = &OrderStatus{Change: &c}
		} else {
			merged := Changes{"status": *d.Status.Change}.Merge(Changes{"status": *next.Status.Change})
			if c, ok := merged["status"]; ok {
				d.Status = &OrderStatus{Change: &c}
			} else {
				d.Status = nil
			}
		}
	}
}

// Clone はマージ用のコピーを返す
func (d *OrderDiff) Clone() *OrderDiff {
	if d == nil {
		return nil
	}
	out := &OrderDiff{OrderNumber: d.OrderNumber, whole: d.whole}
	out.Products = make([]OrderLine, 0, len(d.Products))
	for _, p := range d.Products {
		out.Products = append(out.Products, OrderLine{Name: p.Name, DetailID: p.DetailID, Changes: p.Changes.Merge(nil)})
	}
	if d.Status != nil {
		s := *d.Status
		if s.Change != nil {
			c := *s.Change
			s.Change = &c
		}
		out.Status = &s
	}
	return out
}

// ---- customers ----

type CustomerSection struct {
	ID            int64   `json:"id"`
	Username      string  `json:"username"`
	CompanyName   string  `json:"company_name"`
	ContactPerson string  `json:"contact_person,omitempty"`
	Changes       Changes `json:"changes,omitempty"`

	LineUsers  []string `json:"line_users,omitempty"`
	LineGroups []string `json:"line_groups,omitempty"`

	PasswordChanged bool `json:"password_changed,omitempty"`
}

type CustomerDiff struct {
	Customer CustomerSection `json:"customer"`

	whole bool
}

func (d *CustomerDiff) Table() model.SubjectTable { return model.SubjectCustomers }

func (d *CustomerDiff) Empty() bool {
	return d == nil || (!d.whole && d.Customer.Changes.Empty())
}

// ---- products ----

type ProductSection struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Changes Changes `json:"changes,omitempty"`
}

type LockedDateSection struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Action string `json:"action"`
}

const (
	LockAction   = "lock"
	UnlockAction = "unlock"
)

// product か locked_date のどちらか一方
type ProductDiff struct {
	Product    *ProductSection    `json:"product,omitempty"`
	LockedDate *LockedDateSection `json:"locked_date,omitempty"`

	whole bool
}

func (d *ProductDiff) Table() model.SubjectTable { return model.SubjectProducts }

func (d *ProductDiff) Empty() bool {
	if d == nil {
		return true
	}
	if d.LockedDate != nil || d.whole {
		return false
	}
	return d.Product == nil || d.Product.Changes.Empty()
}

// ---- administrators ----

type AdminSection struct {
	AdminAccount    string `json:"admin_account"`
	AdminName       string `json:"admin_name"`
	StaffNo         string `json:"staff_no"`
	PermissionLevel any    `json:"permission_level"`
}

type AdminDiff struct {
	Admin           AdminSection `json:"admin"`
	Changes         Changes      `json:"changes,omitempty"`
	PasswordChanged bool         `json:"password_changed,omitempty"`

	whole bool
}

func (d *AdminDiff) Table() model.SubjectTable { return model.SubjectAdministrators }

func (d *AdminDiff) Empty() bool {
	return d == nil || (!d.whole && d.Changes.Empty())
}
