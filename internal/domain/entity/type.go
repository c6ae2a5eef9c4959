package entity

import (
	"fmt"
)

// Kind is one of the business entity types that crosses the sync boundary.
type Kind string

const (
	KindClient   Kind = "client"
	KindSale     Kind = "sale"
	KindPayment  Kind = "payment"
	KindProduct  Kind = "product"
	KindTemplate Kind = "template"
	KindGoal     Kind = "goal"
	KindExpense  Kind = "expense"
	KindReminder Kind = "reminder"
)

// DownloadOrder lists kinds so that every parent is applied before its children.
var DownloadOrder = []Kind{
	KindClient,
	KindProduct,
	KindTemplate,
	KindGoal,
	KindExpense,
	KindSale,
	KindPayment,
	KindReminder,
}

// UploadOrder is the same dependency order; parents get their remote ids first.
var UploadOrder = DownloadOrder

// Validate returns an error for an unknown kind.
func (k Kind) Validate() error {
	switch k {
	case KindClient, KindSale, KindPayment, KindProduct,
		KindTemplate, KindGoal, KindExpense, KindReminder:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownKind, k)
}

func (k Kind) String() string {
	return string(k)
}

// Plural is the key used for this kind in the bulk dataset payload.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// ParseKind accepts both singular and plural spellings ("client", "clients").
func ParseKind(s string) (Kind, error) {
	for _, k := range DownloadOrder {
		if s == string(k) || s == k.Plural() {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKind, s)
}
