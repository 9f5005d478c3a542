package admin

import (
	"context"
	"fmt"

	"github.com/Declyn50s/Traine-Savates/pkg/apperr"
	"github.com/Declyn50s/Traine-Savates/pkg/content"
	"github.com/Declyn50s/Traine-Savates/pkg/listview"
	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
)

// Kind names a reorderable collection.
type Kind string

const (
	KindRaces     Kind = "races"
	KindProgram   Kind = "program"
	KindTrainings Kind = "trainings"
	KindCommittee Kind = "committee"
	KindSponsors  Kind = "sponsors"
	KindFaq       Kind = "faq"
)

var kindTables = map[Kind]string{
	KindRaces:     models.TableRaceCategories,
	KindProgram:   models.TableProgramItems,
	KindTrainings: models.TableTrainingSessions,
	KindCommittee: models.TableCommitteeMembers,
	KindSponsors:  models.TableSponsors,
	KindFaq:       models.TableFaqItems,
}

// ParseKind validates a collection name taken from a URL.
func ParseKind(raw string) (Kind, error) {
	k := Kind(raw)
	if _, ok := kindTables[k]; !ok {
		return "", apperr.NotFound("unknown collection %q", raw)
	}
	return k, nil
}

// Reorder gives the rows of kind listed in ids the positions 1..N in that
// order, or N..1 when the list is shown descending. Every write lands or
// none does.
func (s *Service) Reorder(ctx context.Context, kind Kind, ids []string, desc bool) error {
	return s.Apply(ctx, kind, listview.Renumber(ids, desc))
}

// Apply persists order_index assignments in one transaction.
func (s *Service) Apply(ctx context.Context, kind Kind, assignments []listview.Assignment) error {
	table, ok := kindTables[kind]
	if !ok {
		return apperr.NotFound("unknown collection %q", kind)
	}
	seen := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		if a.ID == "" || seen[a.ID] {
			return apperr.Invalid("ids", fmt.Sprintf("duplicate or empty id %q", a.ID))
		}
		seen[a.ID] = true
	}
	err := s.db.Atomic(ctx, func(tx store.Store) error {
		for _, a := range assignments {
			if _, err := tx.Update(ctx, table, a.ID, store.Patch{"order_index": a.OrderIndex}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return content.StoreError("reorder "+string(kind), err)
	}
	logger.Debug("Reordered %d %s", len(assignments), kind)
	return nil
}

// Move drags the row at from to position to within ids and persists the
// resulting order.
func (s *Service) Move(ctx context.Context, kind Kind, ids []string, from, to int, desc bool) ([]string, error) {
	moved, err := listview.Move(ids, from, to)
	if err != nil {
		return nil, apperr.Invalid("position", err.Error())
	}
	return moved, s.Reorder(ctx, kind, moved, desc)
}
