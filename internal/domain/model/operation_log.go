package model

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// どのテーブルに対する操作か
type SubjectTable string

const (
	SubjectOrders         SubjectTable = "orders"
	SubjectCustomers      SubjectTable = "customers"
	SubjectProducts       SubjectTable = "products"
	SubjectAdministrators SubjectTable = "administrators"
)

// 操作の種類
type OperationKind string

const (
	OperationCreate OperationKind = "create"
	OperationUpdate OperationKind = "update"
	OperationDelete OperationKind = "delete"
	// 注文の確認/退回
	OperationAudit      OperationKind = "audit"
	OperationLockDate   OperationKind = "lock_date"
	OperationUnlockDate OperationKind = "unlock_date"
)

// 操作した人の種類（システム操作なら空）
type ActorKind string

const (
	ActorAdmin    ActorKind = "admin"
	ActorCustomer ActorKind = "customer"
)

var subjectTables = []SubjectTable{SubjectOrders, SubjectCustomers, SubjectProducts, SubjectAdministrators}

var operationKinds = []OperationKind{
	OperationCreate, OperationUpdate, OperationDelete,
	OperationAudit, OperationLockDate, OperationUnlockDate,
}

func ParseSubjectTable(s string) (SubjectTable, error) {
	v := SubjectTable(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range subjectTables {
		if t == v {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown subject table %q", s)
}

func ParseOperationKind(s string) (OperationKind, error) {
	v := OperationKind(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range operationKinds {
		if k == v {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown operation kind %q", s)
}

func ParseActorKind(s string) (ActorKind, error) {
	switch v := ActorKind(strings.ToLower(strings.TrimSpace(s))); v {
	case ActorAdmin, ActorCustomer:
		return v, nil
	}
	return "", fmt.Errorf("unknown actor kind %q", s)
}

// 操作ログ（追記のみ）。
// 「誰が」「どのテーブルの」「どの対象に」「どう変えたか」を残す。
type OperationLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	SubjectTable SubjectTable `gorm:"type:varchar(32);not null;index:idx_operation_logs_subject,priority:1" json:"subject_table"`

	OperationKind OperationKind `gorm:"type:varchar(32);not null;index" json:"operation_kind"`

	// 対象テーブル内のID（テーブルをまたいで一意ではない）
	SubjectID int64 `gorm:"not null;index:idx_operation_logs_subject,priority:2" json:"subject_id"`

	// {"message": {...}} 形式の差分
	DiffDocument datatypes.JSON `gorm:"type:jsonb;not null" json:"diff_document"`

	ActorID   *int64     `gorm:"index" json:"actor_id"`
	ActorKind *ActorKind `gorm:"type:varchar(16)" json:"actor_kind"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (OperationLog) TableName() string { return "operation_logs" }
