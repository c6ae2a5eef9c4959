// Package translate converts entities between the device schema and the
// server schema. It does no I/O: foreign keys are resolved through an
// in-memory Refs table supplied by the caller.
package translate

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"salesync/internal/domain/entity"
)

var (
	ErrUnresolvedRef = errors.New("unresolved reference")
	ErrInvalidField  = errors.New("invalid field")
)

// Refs resolves foreign keys between the two id spaces.
type Refs interface {
	LocalIDFor(kind entity.Kind, remoteID string) (int64, bool)
	RemoteIDFor(kind entity.Kind, localID int64) (string, bool)
}

// Error describes an entity that could not be translated. The entity is
// skipped by the caller, it is never written with a dangling reference.
type Error struct {
	Kind     entity.Kind
	LocalID  int64
	RemoteID string
	Field    string
	Err      error
}

func (e *Error) Error() string {
	if e.RemoteID != "" {
		return fmt.Sprintf("translate %s %s: %s: %v", e.Kind, e.RemoteID, e.Field, e.Err)
	}
	return fmt.Sprintf("translate %s #%d: %s: %v", e.Kind, e.LocalID, e.Field, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders epoch milliseconds as an ISO-8601 UTC string.
func FormatTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(isoLayout)
}

// ParseTime accepts RFC 3339 timestamps with or without fractional seconds
// and plain dates, and returns epoch milliseconds.
func ParseTime(s string) (int64, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("%w: bad date %q", ErrInvalidField, s)
}

// ToRemote converts a device entity into its server form under remoteID.
func ToRemote(local entity.Local, remoteID string, refs Refs) (entity.Remote, error) {
	fail := func(field string, err error) error {
		return &Error{Kind: local.Kind(), LocalID: local.LocalID(), Field: field, Err: err}
	}
	ref := func(kind entity.Kind, id int64, field string) (string, error) {
		rid, ok := refs.RemoteIDFor(kind, id)
		if !ok {
			return "", fail(field, fmt.Errorf("%w: %s #%d", ErrUnresolvedRef, kind, id))
		}
		return rid, nil
	}

	switch e := local.(type) {
	case *entity.Client:
		return entity.ClientDTO{
			ID:        remoteID,
			Nom:       e.Nom,
			Prenom:    e.Prenom,
			Telephone: e.Telephone,
			Adresse:   e.Adresse,
			Type:      e.Type,
		}, nil

	case *entity.Sale:
		clientID, err := ref(entity.KindClient, e.ClientID, "client_id")
		if err != nil {
			return nil, err
		}
		articles := e.Articles
		if articles == nil {
			articles = []entity.Article{}
		}
		produits, err := json.Marshal(articles)
		if err != nil {
			return nil, fail("produits", err)
		}
		return entity.SaleDTO{
			ID:           remoteID,
			ClientID:     clientID,
			Produits:     string(produits),
			Montant:      e.Total,
			MontantPaye:  e.MontantPaye,
			TypePaiement: e.Statut,
			DateVente:    FormatTime(e.Date),
		}, nil

	case *entity.Payment:
		venteID, err := ref(entity.KindSale, e.SaleID, "vente_id")
		if err != nil {
			return nil, err
		}
		return entity.PaymentDTO{
			ID:           remoteID,
			VenteID:      venteID,
			Montant:      e.Montant,
			ModePaiement: e.Mode,
			DatePaiement: FormatTime(e.Date),
		}, nil

	case *entity.Product:
		return entity.ProductDTO{
			ID:        remoteID,
			Nom:       e.Nom,
			Prix:      e.Prix,
			Stock:     e.Stock,
			Categorie: e.Categorie,
		}, nil

	case *entity.Template:
		return entity.TemplateDTO{
			ID:        remoteID,
			Nom:       e.Name,
			Message:   e.Message,
			Categorie: e.Category,
		}, nil

	case *entity.Goal:
		return entity.GoalDTO{
			ID:           remoteID,
			Type:         e.Type,
			Objectif:     e.Target,
			Periode:      e.Period,
			DateCreation: FormatTime(e.CreatedAt),
		}, nil

	case *entity.Expense:
		return entity.ExpenseDTO{
			ID:          remoteID,
			Libelle:     e.Label,
			Montant:     e.Amount,
			Categorie:   e.Category,
			DateDepense: FormatTime(e.Date),
		}, nil

	case *entity.Reminder:
		clientID, err := ref(entity.KindClient, e.ClientID, "client_id")
		if err != nil {
			return nil, err
		}
		var venteID string
		if e.SaleID != 0 {
			if venteID, err = ref(entity.KindSale, e.SaleID, "vente_id"); err != nil {
				return nil, err
			}
		}
		return entity.ReminderDTO{
			ID:         remoteID,
			ClientID:   clientID,
			VenteID:    venteID,
			Message:    e.Message,
			DateRappel: FormatTime(e.DueDate),
			Fait:       e.Done,
		}, nil
	}

	return nil, fmt.Errorf("%w: %T", entity.ErrUnknownKind, local)
}

// FromRemote converts a server entity into a device entity. The returned
// entity has no local id; the caller assigns one on insert or update.
func FromRemote(remote entity.Remote, refs Refs) (entity.Local, error) {
	fail := func(field string, err error) error {
		return &Error{Kind: remote.Kind(), RemoteID: remote.RemoteID(), Field: field, Err: err}
	}
	ref := func(kind entity.Kind, id string, field string) (int64, error) {
		lid, ok := refs.LocalIDFor(kind, id)
		if id == "" || !ok {
			return 0, fail(field, fmt.Errorf("%w: %s %q", ErrUnresolvedRef, kind, id))
		}
		return lid, nil
	}
	date := func(s string, field string) (int64, error) {
		ms, err := ParseTime(s)
		if err != nil {
			return 0, fail(field, err)
		}
		return ms, nil
	}

	switch e := remote.(type) {
	case entity.ClientDTO:
		return &entity.Client{
			Prenom:    e.Prenom,
			Nom:       e.Nom,
			Telephone: e.Telephone,
			Adresse:   e.Adresse,
			Type:      e.Type,
		}, nil

	case entity.SaleDTO:
		clientID, err := ref(entity.KindClient, e.ClientID, "client_id")
		if err != nil {
			return nil, err
		}
		var articles []entity.Article
		if e.Produits != "" {
			if err := json.Unmarshal([]byte(e.Produits), &articles); err != nil {
				return nil, fail("produits", fmt.Errorf("%w: %v", ErrInvalidField, err))
			}
		}
		ms, err := date(e.DateVente, "date_vente")
		if err != nil {
			return nil, err
		}
		return &entity.Sale{
			ClientID:    clientID,
			Articles:    articles,
			Total:       e.Montant,
			MontantPaye: e.MontantPaye,
			Statut:      e.TypePaiement,
			Date:        ms,
		}, nil

	case entity.PaymentDTO:
		saleID, err := ref(entity.KindSale, e.VenteID, "vente_id")
		if err != nil {
			return nil, err
		}
		ms, err := date(e.DatePaiement, "date_paiement")
		if err != nil {
			return nil, err
		}
		return &entity.Payment{
			SaleID:  saleID,
			Montant: e.Montant,
			Mode:    e.ModePaiement,
			Date:    ms,
		}, nil

	case entity.ProductDTO:
		return &entity.Product{
			Nom:       e.Nom,
			Prix:      e.Prix,
			Stock:     e.Stock,
			Categorie: e.Categorie,
		}, nil

	case entity.TemplateDTO:
		return &entity.Template{
			Name:     e.Nom,
			Message:  e.Message,
			Category: e.Categorie,
		}, nil

	case entity.GoalDTO:
		ms, err := date(e.DateCreation, "date_creation")
		if err != nil {
			return nil, err
		}
		return &entity.Goal{
			Type:      e.Type,
			Target:    e.Objectif,
			Period:    e.Periode,
			CreatedAt: ms,
		}, nil

	case entity.ExpenseDTO:
		ms, err := date(e.DateDepense, "date_depense")
		if err != nil {
			return nil, err
		}
		return &entity.Expense{
			Label:    e.Libelle,
			Amount:   e.Montant,
			Category: e.Categorie,
			Date:     ms,
		}, nil

	case entity.ReminderDTO:
		clientID, err := ref(entity.KindClient, e.ClientID, "client_id")
		if err != nil {
			return nil, err
		}
		var saleID int64
		if e.VenteID != "" {
			if saleID, err = ref(entity.KindSale, e.VenteID, "vente_id"); err != nil {
				return nil, err
			}
		}
		ms, err := date(e.DateRappel, "date_rappel")
		if err != nil {
			return nil, err
		}
		return &entity.Reminder{
			ClientID: clientID,
			SaleID:   saleID,
			Message:  e.Message,
			DueDate:  ms,
			Done:     e.Fait,
		}, nil
	}

	return nil, fmt.Errorf("%w: %T", entity.ErrUnknownKind, remote)
}
