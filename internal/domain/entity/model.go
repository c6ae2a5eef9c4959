package entity

import (
	"strings"
	"unicode"
)

// Local is an entity as stored on the device. Local ids are assigned by the
// device store on insert and are never reused.
type Local interface {
	Kind() Kind
	LocalID() int64
	SetLocalID(id int64)
}

type Client struct {
	ID        int64  `json:"id"`
	Prenom    string `json:"prenom"`
	Nom       string `json:"nom"`
	Telephone string `json:"telephone"`
	Adresse   string `json:"adresse"`
	Type      string `json:"type"`
}

// Article is one line of a sale.
type Article struct {
	Nom      string  `json:"nom"`
	Quantite int     `json:"quantite"`
	Prix     float64 `json:"prix"`
}

type Sale struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"clientId"`
	Articles    []Article `json:"articles"`
	Total       float64   `json:"total"`
	MontantPaye float64   `json:"montantPaye"`
	Statut      string    `json:"statut"`
	Date        int64     `json:"date"`
}

type Payment struct {
	ID      int64   `json:"id"`
	SaleID  int64   `json:"saleId"`
	Montant float64 `json:"montant"`
	Mode    string  `json:"mode"`
	Date    int64   `json:"date"`
}

type Product struct {
	ID        int64   `json:"id"`
	Nom       string  `json:"nom"`
	Prix      float64 `json:"prix"`
	Stock     int     `json:"stock"`
	Categorie string  `json:"categorie"`
}

type Template struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

type Goal struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"`
	Target    float64 `json:"target"`
	Period    string  `json:"period"`
	CreatedAt int64   `json:"createdAt"`
}

type Expense struct {
	ID       int64   `json:"id"`
	Label    string  `json:"label"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     int64   `json:"date"`
}

// Reminder.SaleID is optional, 0 means no sale.
type Reminder struct {
	ID       int64  `json:"id"`
	ClientID int64  `json:"clientId"`
	SaleID   int64  `json:"saleId"`
	Message  string `json:"message"`
	DueDate  int64  `json:"dueDate"`
	Done     bool   `json:"done"`
}

func (e *Client) Kind() Kind   { return KindClient }
func (e *Sale) Kind() Kind     { return KindSale }
func (e *Payment) Kind() Kind  { return KindPayment }
func (e *Product) Kind() Kind  { return KindProduct }
func (e *Template) Kind() Kind { return KindTemplate }
func (e *Goal) Kind() Kind     { return KindGoal }
func (e *Expense) Kind() Kind  { return KindExpense }
func (e *Reminder) Kind() Kind { return KindReminder }

func (e *Client) LocalID() int64   { return e.ID }
func (e *Sale) LocalID() int64     { return e.ID }
func (e *Payment) LocalID() int64  { return e.ID }
func (e *Product) LocalID() int64  { return e.ID }
func (e *Template) LocalID() int64 { return e.ID }
func (e *Goal) LocalID() int64     { return e.ID }
func (e *Expense) LocalID() int64  { return e.ID }
func (e *Reminder) LocalID() int64 { return e.ID }

func (e *Client) SetLocalID(id int64)   { e.ID = id }
func (e *Sale) SetLocalID(id int64)     { e.ID = id }
func (e *Payment) SetLocalID(id int64)  { e.ID = id }
func (e *Product) SetLocalID(id int64)  { e.ID = id }
func (e *Template) SetLocalID(id int64) { e.ID = id }
func (e *Goal) SetLocalID(id int64)     { e.ID = id }
func (e *Expense) SetLocalID(id int64)  { e.ID = id }
func (e *Reminder) SetLocalID(id int64) { e.ID = id }

// NewLocal returns an empty local entity of the given kind.
func NewLocal(kind Kind) (Local, error) {
	switch kind {
	case KindClient:
		return &Client{}, nil
	case KindSale:
		return &Sale{}, nil
	case KindPayment:
		return &Payment{}, nil
	case KindProduct:
		return &Product{}, nil
	case KindTemplate:
		return &Template{}, nil
	case KindGoal:
		return &Goal{}, nil
	case KindExpense:
		return &Expense{}, nil
	case KindReminder:
		return &Reminder{}, nil
	}
	return nil, ErrUnknownKind
}

// NormalizePhone keeps only digits, a leading "00" international prefix is
// folded into the plain number so "+33 6 12" and "0033612" compare equal.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimPrefix(b.String(), "00")
}
