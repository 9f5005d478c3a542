package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Declyn50s/Traine-Savates/pkg/apperr"
	"github.com/Declyn50s/Traine-Savates/pkg/content"
	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
	"github.com/Declyn50s/Traine-Savates/pkg/textutil"
)

const (
	dateLayout = "2006-01-02"
	// Duplicated editions start on this placeholder day of the new year.
	duplicateMonthDay = "-06-14"
	// Default race day for the very first edition.
	firstEditionMonthDay = "-04-18"
	editionTitlePrefix   = "Course des Traîne-Savates "
)

// ListEditions returns every edition, most recent date first.
func (s *Service) ListEditions(ctx context.Context) ([]models.Edition, error) {
	editions, err := s.t.Editions.List(ctx, store.Query{}.OrderBy(store.Desc("date")))
	return editions, content.StoreError("list editions", err)
}

func (s *Service) GetEdition(ctx context.Context, id string) (models.Edition, error) {
	e, err := s.t.Editions.Get(ctx, id)
	return e, content.StoreError("load edition "+id, err)
}

// ActiveEdition returns the published edition, or nil when there is none.
func (s *Service) ActiveEdition(ctx context.Context) (*models.Edition, error) {
	e, ok, err := s.t.Editions.First(ctx, content.PublishedEdition)
	if err != nil {
		return nil, content.StoreError("load active edition", err)
	}
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// SuggestNextEdition pre-fills the creation form from the latest edition.
func (s *Service) SuggestNextEdition(ctx context.Context) (models.Edition, error) {
	now := s.now()
	last, ok, err := s.t.Editions.First(ctx, store.Query{}.OrderBy(store.Desc("year"), store.Desc("date")))
	if err != nil {
		return models.Edition{}, content.StoreError("load last edition", err)
	}

	next := models.Edition{Year: now.Year(), EditionNumber: 1, Status: models.EditionDraft}
	next.Date = strconv.Itoa(next.Year) + firstEditionMonthDay
	if ok {
		next.Year = max(now.Year(), last.Year+1)
		next.EditionNumber = last.EditionNumber + 1
		next.Date = strconv.Itoa(next.Year) + firstEditionMonthDay
		if d, err := time.Parse(dateLayout, last.Date); err == nil {
			next.Date = time.Date(next.Year, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Format(dateLayout)
		}
		next.HeroSubtitle = last.HeroSubtitle
	}
	next.Title = editionTitlePrefix + strconv.Itoa(next.Year)
	next.Slug = strconv.Itoa(next.Year)
	return next, nil
}

// CreateEdition stores a new draft edition.
func (s *Service) CreateEdition(ctx context.Context, e models.Edition) (models.Edition, error) {
	e.ID = ""
	e.Status = models.EditionDraft
	normalizeEdition(&e)
	if err := validateEdition(e); err != nil {
		return models.Edition{}, err
	}
	var created models.Edition
	err := s.atomic(ctx, func(t content.Tables) error {
		if err := slugAvailable(ctx, t, e.Slug, ""); err != nil {
			return err
		}
		var err error
		created, err = t.Editions.Insert(ctx, e)
		return err
	})
	if err != nil {
		return models.Edition{}, content.StoreError("create edition", err)
	}
	logger.Info("Edition %s created (%s)", created.Slug, created.ID)
	return created, nil
}

// UpdateEdition replaces an edition's editable fields. Publishing goes through
// ActivateEdition only.
func (s *Service) UpdateEdition(ctx context.Context, id string, e models.Edition) (models.Edition, error) {
	normalizeEdition(&e)
	var updated models.Edition
	err := s.atomic(ctx, func(t content.Tables) error {
		current, err := t.Editions.Get(ctx, id)
		if err != nil {
			return err
		}
		if e.Status == "" {
			e.Status = current.Status
		}
		if e.Status == models.EditionPublished && current.Status != models.EditionPublished {
			return apperr.Invalid("status", "use activation to publish an edition")
		}
		if err := validateEdition(e); err != nil {
			return err
		}
		if err := slugAvailable(ctx, t, e.Slug, id); err != nil {
			return err
		}
		updated, err = t.Editions.Replace(ctx, id, e)
		return err
	})
	return updated, content.StoreError("update edition "+id, err)
}

// ActivateEdition publishes id and archives every other edition in one
// transaction, so exactly one edition is published afterwards.
func (s *Service) ActivateEdition(ctx context.Context, id string) (models.Edition, error) {
	var published models.Edition
	err := s.atomic(ctx, func(t content.Tables) error {
		if _, err := t.Editions.Get(ctx, id); err != nil {
			return err
		}
		if _, err := t.Editions.UpdateWhere(ctx, store.Patch{"status": models.EditionArchived}, store.Neq("id", id)); err != nil {
			return err
		}
		var err error
		published, err = t.Editions.Update(ctx, id, store.Patch{"status": models.EditionPublished})
		return err
	})
	if err != nil {
		return models.Edition{}, content.StoreError("activate edition "+id, err)
	}
	logger.Info("Edition %s activated", published.Slug)
	return published, nil
}

// DuplicateEdition copies an edition with its races and program into a new
// draft for year. The copy is all-or-nothing.
func (s *Service) DuplicateEdition(ctx context.Context, sourceID string, year int) (models.Edition, error) {
	if year < 1900 || year > 9999 {
		return models.Edition{}, apperr.Invalid("year", "must be a four digit year")
	}
	var created models.Edition
	var races, items int
	err := s.atomic(ctx, func(t content.Tables) error {
		source, err := t.Editions.Get(ctx, sourceID)
		if err != nil {
			return err
		}
		copyRow := source
		copyRow.ID = ""
		copyRow.Slug = strconv.Itoa(year)
		copyRow.Year = year
		copyRow.EditionNumber = source.EditionNumber + 1
		copyRow.Date = strconv.Itoa(year) + duplicateMonthDay
		copyRow.Status = models.EditionDraft
		copyRow.RegistrationOnlineURL = ""
		copyRow.ResultsURL = ""
		copyRow.PhotosAlbumURL = ""
		copyRow.CreatedAt, copyRow.UpdatedAt = "", ""
		if err := slugAvailable(ctx, t, copyRow.Slug, ""); err != nil {
			return err
		}
		if created, err = t.Editions.Insert(ctx, copyRow); err != nil {
			return err
		}

		sourceRaces, err := t.Races.List(ctx, store.Where(store.Eq("edition_id", sourceID)))
		if err != nil {
			return err
		}
		for _, r := range sourceRaces {
			r.ID, r.EditionID, r.CreatedAt, r.UpdatedAt = "", created.ID, "", ""
			if _, err := t.Races.Insert(ctx, r); err != nil {
				return err
			}
		}
		sourceProgram, err := t.Program.List(ctx, store.Where(store.Eq("edition_id", sourceID)))
		if err != nil {
			return err
		}
		for _, p := range sourceProgram {
			p.ID, p.EditionID, p.CreatedAt, p.UpdatedAt = "", created.ID, "", ""
			if _, err := t.Program.Insert(ctx, p); err != nil {
				return err
			}
		}
		races, items = len(sourceRaces), len(sourceProgram)
		return nil
	})
	if err != nil {
		return models.Edition{}, content.StoreError("duplicate edition "+sourceID, err)
	}
	logger.Info("Edition %s duplicated to %s with %d races and %d program items", sourceID, created.Slug, races, items)
	return created, nil
}

func slugAvailable(ctx context.Context, t content.Tables, slug, exceptID string) error {
	filters := []store.Filter{store.Eq("slug", slug)}
	if exceptID != "" {
		filters = append(filters, store.Neq("id", exceptID))
	}
	n, err := t.Editions.Count(ctx, filters...)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Invalid("slug", fmt.Sprintf("slug %q is already used", slug))
	}
	return nil
}

func normalizeEdition(e *models.Edition) {
	e.Title = strings.TrimSpace(e.Title)
	e.Slug = strings.TrimSpace(e.Slug)
	e.Date = strings.TrimSpace(e.Date)
	e.HeroSubtitle = strings.TrimSpace(e.HeroSubtitle)
	e.RegistrationOnlineURL = strings.TrimSpace(e.RegistrationOnlineURL)
	e.ResultsURL = strings.TrimSpace(e.ResultsURL)
	e.PhotosAlbumURL = strings.TrimSpace(e.PhotosAlbumURL)
	if e.Slug == "" && e.Year > 0 {
		e.Slug = strconv.Itoa(e.Year)
	}
	e.CreatedAt, e.UpdatedAt = "", ""
}

func validateEdition(e models.Edition) error {
	fields := map[string]string{}
	if e.Title == "" {
		fields["title"] = "required"
	}
	if e.Year < 1900 || e.Year > 9999 {
		fields["year"] = "must be a four digit year"
	}
	if e.EditionNumber < 1 {
		fields["edition_number"] = "must be at least 1"
	}
	if _, err := time.Parse(dateLayout, e.Date); err != nil {
		fields["date"] = "must be a date formatted YYYY-MM-DD"
	}
	if !textutil.IsSlug(e.Slug) {
		fields["slug"] = "must contain lowercase letters, digits and dashes only"
	}
	if !e.Status.Valid() {
		fields["status"] = "unknown status"
	}
	checkURL(fields, "registration_online_url", e.RegistrationOnlineURL)
	checkURL(fields, "results_url", e.ResultsURL)
	checkURL(fields, "photos_album_url", e.PhotosAlbumURL)
	return apperr.Validation(fields)
}
