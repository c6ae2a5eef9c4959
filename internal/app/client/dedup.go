package client

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/exp/slog"

	"salesync/internal/app/client/translate"
	"salesync/internal/domain/entity"
	"salesync/internal/domain/mapping"
)

// saleMatchWindow — допуск по времени при сопоставлении продаж, мс
const saleMatchWindow int64 = 60_000

type MatchSource int

const (
	MatchNone MatchSource = iota
	MatchMapping
	MatchNaturalKey
)

func (m MatchSource) String() string {
	switch m {
	case MatchMapping:
		return "mapping"
	case MatchNaturalKey:
		return "natural_key"
	}
	return "none"
}

// Match результат поиска локальной сущности для удаленной.
// Stale — найденный маппинг ссылался на удаленную локальную строку.
type Match struct {
	LocalID int64
	Source  MatchSource
	Stale   bool
}

func (m Match) Found() bool {
	return m.Source != MatchNone
}

// Deduplicator ищет локальную сущность для входящей удаленной:
// сначала по маппингу, затем по естественному ключу.
type Deduplicator struct {
	store  Storage
	mapper mapping.Mapper
	log    *slog.Logger
}

func NewDeduplicator(store Storage, mapper mapping.Mapper, log *slog.Logger) *Deduplicator {
	return &Deduplicator{
		store:  store,
		mapper: mapper,
		log:    log.With("component", "dedup"),
	}
}

func (d *Deduplicator) ResolveLocalMatch(ctx context.Context, remote entity.Remote) (Match, error) {
	kind := remote.Kind()
	var match Match

	if localID, ok := d.mapper.LocalIDFor(ctx, remote.RemoteID(), kind); ok {
		_, err := d.store.Get(ctx, kind, localID)
		switch {
		case err == nil:
			return Match{LocalID: localID, Source: MatchMapping}, nil
		case errors.Is(err, entity.ErrNotFound):
			d.log.Warn("Устаревший маппинг", "kind", kind, "remote_id", remote.RemoteID(), "local_id", localID)
			match.Stale = true
		default:
			return match, &StoreError{Kind: kind, Op: "get", Err: err}
		}
	}

	candidates, err := d.candidates(ctx, remote)
	if err != nil {
		return match, &StoreError{Kind: kind, Op: "find", Err: err}
	}

	for _, id := range candidates {
		// кандидат уже привязан к другой удаленной сущности
		if rid, ok := d.mapper.RemoteIDFor(ctx, id, kind); ok && rid != remote.RemoteID() {
			continue
		}
		match.LocalID = id
		match.Source = MatchNaturalKey
		return match, nil
	}

	return match, nil
}

// candidates возвращает id локальных сущностей с тем же естественным
// ключом, лучшие первыми
func (d *Deduplicator) candidates(ctx context.Context, remote entity.Remote) ([]int64, error) {
	switch r := remote.(type) {
	case entity.ClientDTO:
		found, err := d.store.FindClientsByPhone(ctx, entity.NormalizePhone(r.Telephone))
		if err != nil {
			return nil, err
		}
		return ids(found), nil

	case entity.TemplateDTO:
		found, err := d.store.FindTemplates(ctx, r.Nom, r.Message)
		if err != nil {
			return nil, err
		}
		return ids(found), nil

	case entity.SaleDTO:
		clientID, ok := d.mapper.LocalIDFor(ctx, r.ClientID, entity.KindClient)
		if !ok {
			return nil, nil
		}
		date, err := translate.ParseTime(r.DateVente)
		if err != nil {
			return nil, nil
		}
		found, err := d.store.FindSales(ctx, clientID, r.Montant, date-saleMatchWindow, date+saleMatchWindow)
		if err != nil {
			return nil, err
		}
		sortByDistance(found, date)
		return ids(found), nil
	}

	return nil, nil
}

func ids[T entity.Local](items []T) []int64 {
	out := make([]int64, 0, len(items))
	for _, e := range items {
		out = append(out, e.LocalID())
	}
	return out
}

// sortByDistance — ближайшая по времени продажа первой, при равенстве меньший id
func sortByDistance(sales []*entity.Sale, date int64) {
	dist := func(s *entity.Sale) int64 {
		if d := s.Date - date; d >= 0 {
			return d
		}
		return date - s.Date
	}
	sort.SliceStable(sales, func(i, j int) bool {
		return dist(sales[i]) < dist(sales[j])
	})
}
