package diff

import (
	"erp/internal/domain/model"
)

var adminFields = []field{
	{name: "admin_account", kind: kindText},
	{name: "admin_name", kind: kindText},
	{name: "staff_no", kind: kindText},
	{name: "permission_level_id", kind: kindInt, label: "permission_level_name"},
}

type AdminCalculator struct {
	fields []field
}

func NewAdminCalculator() *AdminCalculator {
	return &AdminCalculator{fields: adminFields}
}

func (c *AdminCalculator) Compute(kind model.OperationKind, before, after Snapshot) (Document, error) {
	switch kind {
	case model.OperationCreate:
		if err := requireSnapshot(after, "new"); err != nil {
			return nil, err
		}
		return &AdminDiff{Admin: adminSection(after), Changes: describeFields(c.fields, after, true), whole: true}, nil
	case model.OperationDelete:
		if err := requireSnapshot(before, "old"); err != nil {
			return nil, err
		}
		return &AdminDiff{Admin: adminSection(before), Changes: describeFields(c.fields, before, false), whole: true}, nil
	case model.OperationUpdate:
		if err := requireSnapshot(before, "old"); err != nil {
			return nil, err
		}
		if err := requireSnapshot(after, "new"); err != nil {
			return nil, err
		}
		d := &AdminDiff{Admin: adminSection(after), Changes: compareFields(c.fields, before, after)}
		// ハッシュ値も含めて実際の値は出さない
		if after.Bool(KeyPasswordChanged) {
			d.Changes["admin_password"] = Change{Before: MaskedDisplay, After: MaskedDisplay}
			d.PasswordChanged = true
		}
		if d.Changes.Empty() {
			return nil, nil
		}
		return d, nil
	}
	return nil, unsupported(kind)
}

func adminSection(s Snapshot) AdminSection {
	level := field{name: "permission_level", key: "permission_level_id", kind: kindInt, label: "permission_level_name"}
	return AdminSection{
		AdminAccount:    s.String("admin_account"),
		AdminName:       s.String("admin_name"),
		StaffNo:         s.String("staff_no"),
		PermissionLevel: level.display(s),
	}
}
