// Package seed imports site content from a YAML document.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Declyn50s/Traine-Savates/pkg/content"
	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
)

// File is the YAML layout accepted by Load.
type File struct {
	Editions  []Edition                `yaml:"editions"`
	Club      *models.ClubContent      `yaml:"club"`
	Practical *models.PracticalInfo    `yaml:"practical"`
	Trainings []models.TrainingSession `yaml:"trainings"`
	Committee []models.CommitteeMember `yaml:"committee"`
	Sponsors  []models.Sponsor         `yaml:"sponsors"`
	Faq       []models.FaqItem         `yaml:"faq"`
}

// Edition carries its races and program inline.
type Edition struct {
	models.Edition `yaml:",inline"`
	Races          []models.RaceCategory `yaml:"races"`
	Program        []models.ProgramItem  `yaml:"program"`
}

// Summary counts imported rows per table.
type Summary map[string]int

type Options struct {
	// Reset empties the content tables first. Inbox tables are never touched.
	Reset bool
}

// Decode parses a seed document, rejecting unknown keys.
func Decode(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("decode seed: %w", err)
	}
	return f, f.validate()
}

func (f File) validate() error {
	published := 0
	slugs := map[string]bool{}
	for _, e := range f.Editions {
		if e.Slug == "" {
			return fmt.Errorf("edition %q has no slug", e.Title)
		}
		if slugs[e.Slug] {
			return fmt.Errorf("edition slug %q appears twice", e.Slug)
		}
		slugs[e.Slug] = true
		if e.Status == "" {
			continue
		}
		if !e.Status.Valid() {
			return fmt.Errorf("edition %s: unknown status %q", e.Slug, e.Status)
		}
		if e.Status == models.EditionPublished {
			published++
		}
	}
	if published > 1 {
		return fmt.Errorf("%d editions are published, at most one may be", published)
	}
	return nil
}

// Load decodes r and imports it in a single transaction.
func Load(ctx context.Context, s store.Store, r io.Reader, opts Options) (Summary, error) {
	f, err := Decode(r)
	if err != nil {
		return nil, err
	}
	sum := Summary{}
	err = s.Atomic(ctx, func(tx store.Store) error {
		t := content.NewTables(tx)
		if opts.Reset {
			if err := reset(ctx, tx); err != nil {
				return err
			}
		}
		for _, e := range f.Editions {
			if err := importEdition(ctx, t, e, sum); err != nil {
				return err
			}
		}
		if f.Club != nil {
			if err := insert(ctx, t.Club, *f.Club, sum); err != nil {
				return err
			}
		}
		if f.Practical != nil {
			if err := insert(ctx, t.Practical, *f.Practical, sum); err != nil {
				return err
			}
		}
		if err := insertOrdered(ctx, t.Trainings, f.Trainings, func(v *models.TrainingSession) *int { return &v.OrderIndex }, sum); err != nil {
			return err
		}
		if err := insertOrdered(ctx, t.Committee, f.Committee, func(v *models.CommitteeMember) *int { return &v.OrderIndex }, sum); err != nil {
			return err
		}
		if err := insertOrdered(ctx, t.Sponsors, f.Sponsors, func(v *models.Sponsor) *int { return &v.OrderIndex }, sum); err != nil {
			return err
		}
		return insertOrdered(ctx, t.Faq, f.Faq, func(v *models.FaqItem) *int { return &v.OrderIndex }, sum)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Seed imported: %v", map[string]int(sum))
	return sum, nil
}

func importEdition(ctx context.Context, t content.Tables, e Edition, sum Summary) error {
	if e.Status == "" {
		e.Status = models.EditionDraft
	}
	if e.Status == models.EditionPublished {
		if _, err := t.Editions.UpdateWhere(ctx, store.Patch{"status": models.EditionArchived},
			store.Eq("status", models.EditionPublished)); err != nil {
			return err
		}
	}
	n, err := t.Editions.Count(ctx, store.Eq("slug", e.Slug))
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("edition slug %q already exists", e.Slug)
	}
	created, err := t.Editions.Insert(ctx, e.Edition)
	if err != nil {
		return fmt.Errorf("insert edition %s: %w", e.Slug, err)
	}
	sum[t.Editions.Name()]++

	for i := range e.Races {
		e.Races[i].EditionID = created.ID
	}
	for i := range e.Program {
		e.Program[i].EditionID = created.ID
	}
	if err := insertOrdered(ctx, t.Races, e.Races, func(v *models.RaceCategory) *int { return &v.OrderIndex }, sum); err != nil {
		return err
	}
	return insertOrdered(ctx, t.Program, e.Program, func(v *models.ProgramItem) *int { return &v.OrderIndex }, sum)
}

// insertOrdered inserts rows keeping file order as the default order_index.
func insertOrdered[T any](ctx context.Context, tbl store.Table[T], rows []T, position func(*T) *int, sum Summary) error {
	for i := range rows {
		if p := position(&rows[i]); *p == 0 {
			*p = i + 1
		}
		if err := insert(ctx, tbl, rows[i], sum); err != nil {
			return err
		}
	}
	return nil
}

func insert[T any](ctx context.Context, tbl store.Table[T], v T, sum Summary) error {
	if _, err := tbl.Insert(ctx, v); err != nil {
		return fmt.Errorf("insert into %s: %w", tbl.Name(), err)
	}
	sum[tbl.Name()]++
	return nil
}

var contentTables = []string{
	models.TableProgramItems,
	models.TableRaceCategories,
	models.TableEditions,
	models.TableClubContent,
	models.TablePracticalInfo,
	models.TableTrainingSessions,
	models.TableCommitteeMembers,
	models.TableSponsors,
	models.TableFaqItems,
}

func reset(ctx context.Context, tx store.Store) error {
	for _, table := range contentTables {
		if _, err := tx.DeleteWhere(ctx, table, nil); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}
