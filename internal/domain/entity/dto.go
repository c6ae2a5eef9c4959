package entity

import (
	"encoding/json"
	"fmt"
)

// Remote is an entity in the server schema. Remote ids are opaque strings
// (UUIDs) that are stable across devices.
type Remote interface {
	Kind() Kind
	RemoteID() string
}

type ClientDTO struct {
	ID        string `json:"id"`
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Telephone string `json:"telephone"`
	Adresse   string `json:"adresse"`
	Type      string `json:"type"`
}

type SaleDTO struct {
	ID           string  `json:"id"`
	ClientID     string  `json:"client_id"`
	Produits     string  `json:"produits"`
	Montant      float64 `json:"montant"`
	MontantPaye  float64 `json:"montant_paye"`
	TypePaiement string  `json:"type_paiement"`
	DateVente    string  `json:"date_vente"`
}

type PaymentDTO struct {
	ID           string  `json:"id"`
	VenteID      string  `json:"vente_id"`
	Montant      float64 `json:"montant"`
	ModePaiement string  `json:"mode_paiement"`
	DatePaiement string  `json:"date_paiement"`
}

type ProductDTO struct {
	ID        string  `json:"id"`
	Nom       string  `json:"nom"`
	Prix      float64 `json:"prix"`
	Stock     int     `json:"stock"`
	Categorie string  `json:"categorie"`
}

type TemplateDTO struct {
	ID        string `json:"id"`
	Nom       string `json:"nom"`
	Message   string `json:"message"`
	Categorie string `json:"categorie"`
}

type GoalDTO struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Objectif     float64 `json:"objectif"`
	Periode      string  `json:"periode"`
	DateCreation string  `json:"date_creation"`
}

type ExpenseDTO struct {
	ID          string  `json:"id"`
	Libelle     string  `json:"libelle"`
	Montant     float64 `json:"montant"`
	Categorie   string  `json:"categorie"`
	DateDepense string  `json:"date_depense"`
}

type ReminderDTO struct {
	ID         string `json:"id"`
	ClientID   string `json:"client_id"`
	VenteID    string `json:"vente_id,omitempty"`
	Message    string `json:"message"`
	DateRappel string `json:"date_rappel"`
	Fait       bool   `json:"fait"`
}

func (e ClientDTO) Kind() Kind   { return KindClient }
func (e SaleDTO) Kind() Kind     { return KindSale }
func (e PaymentDTO) Kind() Kind  { return KindPayment }
func (e ProductDTO) Kind() Kind  { return KindProduct }
func (e TemplateDTO) Kind() Kind { return KindTemplate }
func (e GoalDTO) Kind() Kind     { return KindGoal }
func (e ExpenseDTO) Kind() Kind  { return KindExpense }
func (e ReminderDTO) Kind() Kind { return KindReminder }

func (e ClientDTO) RemoteID() string   { return e.ID }
func (e SaleDTO) RemoteID() string     { return e.ID }
func (e PaymentDTO) RemoteID() string  { return e.ID }
func (e ProductDTO) RemoteID() string  { return e.ID }
func (e TemplateDTO) RemoteID() string { return e.ID }
func (e GoalDTO) RemoteID() string     { return e.ID }
func (e ExpenseDTO) RemoteID() string  { return e.ID }
func (e ReminderDTO) RemoteID() string { return e.ID }

// Dataset is the bulk body exchanged on /sync/all, one array per kind.
type Dataset struct {
	Clients   []ClientDTO   `json:"clients"`
	Sales     []SaleDTO     `json:"sales"`
	Payments  []PaymentDTO  `json:"payments"`
	Products  []ProductDTO  `json:"products"`
	Templates []TemplateDTO `json:"templates"`
	Goals     []GoalDTO     `json:"goals"`
	Expenses  []ExpenseDTO  `json:"expenses"`
	Reminders []ReminderDTO `json:"reminders"`
}

// NewDataset returns a dataset whose arrays are empty rather than nil so it
// marshals to [] for every kind.
func NewDataset() *Dataset {
	return &Dataset{
		Clients:   []ClientDTO{},
		Sales:     []SaleDTO{},
		Payments:  []PaymentDTO{},
		Products:  []ProductDTO{},
		Templates: []TemplateDTO{},
		Goals:     []GoalDTO{},
		Expenses:  []ExpenseDTO{},
		Reminders: []ReminderDTO{},
	}
}

// Items returns the entities of one kind in payload order.
func (d *Dataset) Items(kind Kind) []Remote {
	var out []Remote
	switch kind {
	case KindClient:
		for _, e := range d.Clients {
			out = append(out, e)
		}
	case KindSale:
		for _, e := range d.Sales {
			out = append(out, e)
		}
	case KindPayment:
		for _, e := range d.Payments {
			out = append(out, e)
		}
	case KindProduct:
		for _, e := range d.Products {
			out = append(out, e)
		}
	case KindTemplate:
		for _, e := range d.Templates {
			out = append(out, e)
		}
	case KindGoal:
		for _, e := range d.Goals {
			out = append(out, e)
		}
	case KindExpense:
		for _, e := range d.Expenses {
			out = append(out, e)
		}
	case KindReminder:
		for _, e := range d.Reminders {
			out = append(out, e)
		}
	}
	return out
}

// Add appends a remote entity to the array of its kind.
func (d *Dataset) Add(r Remote) error {
	switch e := r.(type) {
	case ClientDTO:
		d.Clients = append(d.Clients, e)
	case SaleDTO:
		d.Sales = append(d.Sales, e)
	case PaymentDTO:
		d.Payments = append(d.Payments, e)
	case ProductDTO:
		d.Products = append(d.Products, e)
	case TemplateDTO:
		d.Templates = append(d.Templates, e)
	case GoalDTO:
		d.Goals = append(d.Goals, e)
	case ExpenseDTO:
		d.Expenses = append(d.Expenses, e)
	case ReminderDTO:
		d.Reminders = append(d.Reminders, e)
	default:
		return ErrUnknownKind
	}
	return nil
}

// Counts reports the number of entities per kind keyed by the payload name.
func (d *Dataset) Counts() map[string]int {
	counts := make(map[string]int, len(DownloadOrder))
	for _, k := range DownloadOrder {
		counts[k.Plural()] = len(d.Items(k))
	}
	return counts
}

// Len is the total number of entities across all kinds.
func (d *Dataset) Len() int {
	n := 0
	for _, c := range d.Counts() {
		n += c
	}
	return n
}

// DecodeRemote parses one server-schema entity of the given kind.
func DecodeRemote(kind Kind, data []byte) (Remote, error) {
	var (
		r   Remote
		err error
	)
	switch kind {
	case KindClient:
		var e ClientDTO
		err = json.Unmarshal(data, &e)
		r = e
	case KindSale:
		var e SaleDTO
		err = json.Unmarshal(data, &e)
		r = e
	case KindPayment:
		var e PaymentDTO
		err = json.Unmarshal(data, &e)
		r = e
	case KindProduct:
		var e ProductDTO
		err = json.Unmarshal(data, &e)
		r = e
	case KindTemplate:
		var e TemplateDTO
		err = json.Unmarshal(data, &e)
		r = e
	case KindGoal:
		var e GoalDTO
		err = json.Unmarshal(data, &e)
		r = e
	case KindExpense:
		var e ExpenseDTO
		err = json.Unmarshal(data, &e)
		r = e
	case KindReminder:
		var e ReminderDTO
		err = json.Unmarshal(data, &e)
		r = e
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidData, kind, err)
	}
	return r, nil
}
