package admin

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/Declyn50s/Traine-Savates/pkg/apperr"
	"github.com/Declyn50s/Traine-Savates/pkg/content"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
	"github.com/Declyn50s/Traine-Savates/pkg/textutil"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3])[:h][0-5]\d$`)

// create inserts v after validation. A zero order_index appends the row at
// the end of its list.
func create[T any](ctx context.Context, db store.Store, tbl store.Table[T], v T, what string,
	position func(*T) *int, scope ...store.Filter) (T, error) {
	var created T
	err := db.Atomic(ctx, func(tx store.Store) error {
		t := tbl.With(tx)
		if position != nil && *position(&v) == 0 {
			n, err := t.Count(ctx, scope...)
			if err != nil {
				return err
			}
			*position(&v) = n + 1
		}
		var err error
		created, err = t.Insert(ctx, v)
		return err
	})
	return created, content.StoreError("create "+what, err)
}

func replace[T any](ctx context.Context, tbl store.Table[T], id string, v T, what string) (T, error) {
	updated, err := tbl.Replace(ctx, id, v)
	return updated, content.StoreError(fmt.Sprintf("update %s %s", what, id), err)
}

func remove[T any](ctx context.Context, tbl store.Table[T], id, what string) error {
	return content.StoreError(fmt.Sprintf("delete %s %s", what, id), tbl.Delete(ctx, id))
}

func byOrder(filters ...store.Filter) store.Query {
	return store.Where(filters...).OrderBy(store.Asc("order_index"))
}

// Races

func (s *Service) ListRaces(ctx context.Context, editionID string) ([]models.RaceCategory, error) {
	races, err := s.t.Races.List(ctx, byOrder(store.Eq("edition_id", editionID)))
	return races, content.StoreError("list races", err)
}

func (s *Service) GetRace(ctx context.Context, id string) (models.RaceCategory, error) {
	r, err := s.t.Races.Get(ctx, id)
	return r, content.StoreError("load race "+id, err)
}

func (s *Service) CreateRace(ctx context.Context, r models.RaceCategory) (models.RaceCategory, error) {
	r.ID, r.CreatedAt, r.UpdatedAt = "", "", ""
	normalizeRace(&r)
	if err := validateRace(r); err != nil {
		return r, err
	}
	if _, err := s.GetEdition(ctx, r.EditionID); err != nil {
		return r, err
	}
	return create(ctx, s.db, s.t.Races, r, "race",
		func(r *models.RaceCategory) *int { return &r.OrderIndex },
		store.Eq("edition_id", r.EditionID))
}

// UpdateRace replaces a race. The parent edition cannot change.
func (s *Service) UpdateRace(ctx context.Context, id string, r models.RaceCategory) (models.RaceCategory, error) {
	current, err := s.GetRace(ctx, id)
	if err != nil {
		return r, err
	}
	r.EditionID = current.EditionID
	normalizeRace(&r)
	if err := validateRace(r); err != nil {
		return r, err
	}
	return replace(ctx, s.t.Races, id, r, "race")
}

func (s *Service) DeleteRace(ctx context.Context, id string) error {
	return remove(ctx, s.t.Races, id, "race")
}

func normalizeRace(r *models.RaceCategory) {
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = strings.TrimSpace(r.Slug)
	if r.Slug == "" {
		r.Slug = textutil.Slugify(r.Name)
	}
	r.StartTime = strings.TrimSpace(r.StartTime)
	r.RouteGpxURL = strings.TrimSpace(r.RouteGpxURL)
	r.RouteMapImageID = strings.TrimSpace(r.RouteMapImageID)
	r.RouteMapURL = ""
	r.CreatedAt, r.UpdatedAt = "", ""
}

func validateRace(r models.RaceCategory) error {
	fields := map[string]string{}
	if r.Name == "" {
		fields["name"] = "required"
	}
	if !textutil.IsSlug(r.Slug) {
		fields["slug"] = "must contain lowercase letters, digits and dashes only"
	}
	if r.DistanceKm <= 0 {
		fields["distance_km"] = "must be positive"
	}
	if !r.Type.Valid() {
		fields["type"] = "must be adult, junior, walking or villageoise"
	}
	if !clockPattern.MatchString(r.StartTime) {
		fields["start_time"] = "must be a time formatted HH:MM"
	}
	if r.MinAge != nil && r.MaxAge != nil && *r.MinAge > *r.MaxAge {
		fields["max_age"] = "must not be lower than min_age"
	}
	if r.Price != nil && *r.Price < 0 {
		fields["price"] = "must not be negative"
	}
	checkURL(fields, "route_gpx_url", r.RouteGpxURL)
	return apperr.Validation(fields)
}

// Program

func (s *Service) ListProgram(ctx context.Context, editionID string) ([]models.ProgramItem, error) {
	items, err := s.t.Program.List(ctx, byOrder(store.Eq("edition_id", editionID)))
	return items, content.StoreError("list program", err)
}

func (s *Service) GetProgramItem(ctx context.Context, id string) (models.ProgramItem, error) {
	p, err := s.t.Program.Get(ctx, id)
	return p, content.StoreError("load program item "+id, err)
}

func (s *Service) CreateProgramItem(ctx context.Context, p models.ProgramItem) (models.ProgramItem, error) {
	p.ID = ""
	normalizeProgramItem(&p)
	if err := validateProgramItem(p); err != nil {
		return p, err
	}
	if _, err := s.GetEdition(ctx, p.EditionID); err != nil {
		return p, err
	}
	return create(ctx, s.db, s.t.Program, p, "program item",
		func(p *models.ProgramItem) *int { return &p.OrderIndex },
		store.Eq("edition_id", p.EditionID))
}

func (s *Service) UpdateProgramItem(ctx context.Context, id string, p models.ProgramItem) (models.ProgramItem, error) {
	current, err := s.GetProgramItem(ctx, id)
	if err != nil {
		return p, err
	}
	p.EditionID = current.EditionID
	normalizeProgramItem(&p)
	if err := validateProgramItem(p); err != nil {
		return p, err
	}
	return replace(ctx, s.t.Program, id, p, "program item")
}

func (s *Service) DeleteProgramItem(ctx context.Context, id string) error {
	return remove(ctx, s.t.Program, id, "program item")
}

func normalizeProgramItem(p *models.ProgramItem) {
	p.Time = strings.TrimSpace(p.Time)
	p.Label = strings.TrimSpace(p.Label)
	p.Description = strings.TrimSpace(p.Description)
	p.CreatedAt, p.UpdatedAt = "", ""
}

func validateProgramItem(p models.ProgramItem) error {
	fields := map[string]string{}
	if !clockPattern.MatchString(p.Time) {
		fields["time"] = "must be a time formatted HH:MM"
	}
	if p.Label == "" {
		fields["label"] = "required"
	}
	return apperr.Validation(fields)
}

// Trainings

func (s *Service) ListTrainings(ctx context.Context) ([]models.TrainingSession, error) {
	sessions, err := s.t.Trainings.List(ctx, byOrder())
	return sessions, content.StoreError("list trainings", err)
}

func (s *Service) GetTraining(ctx context.Context, id string) (models.TrainingSession, error) {
	t, err := s.t.Trainings.Get(ctx, id)
	return t, content.StoreError("load training "+id, err)
}

func (s *Service) CreateTraining(ctx context.Context, t models.TrainingSession) (models.TrainingSession, error) {
	t.ID = ""
	normalizeTraining(&t)
	if err := validateTraining(t); err != nil {
		return t, err
	}
	return create(ctx, s.db, s.t.Trainings, t, "training",
		func(t *models.TrainingSession) *int { return &t.OrderIndex })
}

func (s *Service) UpdateTraining(ctx context.Context, id string, t models.TrainingSession) (models.TrainingSession, error) {
	normalizeTraining(&t)
	if err := validateTraining(t); err != nil {
		return t, err
	}
	return replace(ctx, s.t.Trainings, id, t, "training")
}

func (s *Service) DeleteTraining(ctx context.Context, id string) error {
	return remove(ctx, s.t.Trainings, id, "training")
}

func normalizeTraining(t *models.TrainingSession) {
	t.Title = strings.TrimSpace(t.Title)
	t.DayOfWeek = strings.TrimSpace(t.DayOfWeek)
	t.StartTime = strings.TrimSpace(t.StartTime)
	t.EndTime = strings.TrimSpace(t.EndTime)
	t.Location = strings.TrimSpace(t.Location)
	t.CreatedAt, t.UpdatedAt = "", ""
}

func validateTraining(t models.TrainingSession) error {
	fields := map[string]string{}
	if !t.Category.Valid() {
		fields["category"] = "must be adult, junior, nordic or prep_20km"
	}
	if t.Title == "" {
		fields["title"] = "required"
	}
	if t.DayOfWeek == "" {
		fields["day_of_week"] = "required"
	}
	if !clockPattern.MatchString(t.StartTime) {
		fields["start_time"] = "must be a time formatted HH:MM"
	}
	if t.EndTime != "" && !clockPattern.MatchString(t.EndTime) {
		fields["end_time"] = "must be a time formatted HH:MM"
	}
	if t.Location == "" {
		fields["location"] = "required"
	}
	return apperr.Validation(fields)
}

// Committee

func (s *Service) ListCommittee(ctx context.Context) ([]models.CommitteeMember, error) {
	members, err := s.t.Committee.List(ctx, byOrder())
	s.resolveCommittee(members)
	return members, content.StoreError("list committee", err)
}

func (s *Service) GetCommitteeMember(ctx context.Context, id string) (models.CommitteeMember, error) {
	m, err := s.t.Committee.Get(ctx, id)
	m.PhotoURL = s.photoURL(m.PhotoAssetID)
	return m, content.StoreError("load committee member "+id, err)
}

func (s *Service) CreateCommitteeMember(ctx context.Context, m models.CommitteeMember) (models.CommitteeMember, error) {
	m.ID = ""
	normalizeMember(&m)
	if err := validateMember(m); err != nil {
		return m, err
	}
	return create(ctx, s.db, s.t.Committee, m, "committee member",
		func(m *models.CommitteeMember) *int { return &m.OrderIndex })
}

func (s *Service) UpdateCommitteeMember(ctx context.Context, id string, m models.CommitteeMember) (models.CommitteeMember, error) {
	normalizeMember(&m)
	if err := validateMember(m); err != nil {
		return m, err
	}
	return replace(ctx, s.t.Committee, id, m, "committee member")
}

func (s *Service) DeleteCommitteeMember(ctx context.Context, id string) error {
	return remove(ctx, s.t.Committee, id, "committee member")
}

func normalizeMember(m *models.CommitteeMember) {
	m.FirstName = strings.TrimSpace(m.FirstName)
	m.LastName = strings.TrimSpace(m.LastName)
	m.Role = strings.TrimSpace(m.Role)
	m.Email = strings.TrimSpace(m.Email)
	m.Phone = strings.TrimSpace(m.Phone)
	m.PhotoAssetID = strings.TrimSpace(m.PhotoAssetID)
	m.PhotoURL = ""
	m.CreatedAt, m.UpdatedAt = "", ""
}

func validateMember(m models.CommitteeMember) error {
	fields := map[string]string{}
	if m.FirstName == "" {
		fields["first_name"] = "required"
	}
	if m.LastName == "" {
		fields["last_name"] = "required"
	}
	if m.Role == "" {
		fields["role"] = "required"
	}
	if m.Email != "" && !content.ValidEmail(m.Email) {
		fields["email"] = "invalid email address"
	}
	return apperr.Validation(fields)
}

// Sponsors

// ListSponsors returns every sponsor, hidden ones included.
func (s *Service) ListSponsors(ctx context.Context) ([]models.Sponsor, error) {
	sponsors, err := s.t.Sponsors.List(ctx, byOrder())
	for i := range sponsors {
		sponsors[i].LogoURL = s.logoURL(sponsors[i].LogoAssetID)
	}
	return sponsors, content.StoreError("list sponsors", err)
}

func (s *Service) GetSponsor(ctx context.Context, id string) (models.Sponsor, error) {
	sp, err := s.t.Sponsors.Get(ctx, id)
	sp.LogoURL = s.logoURL(sp.LogoAssetID)
	return sp, content.StoreError("load sponsor "+id, err)
}

// CreateSponsor inherits the current section visibility so the section flag
// stays consistent across rows.
func (s *Service) CreateSponsor(ctx context.Context, sp models.Sponsor) (models.Sponsor, error) {
	sp.ID = ""
	normalizeSponsor(&sp)
	if err := validateSponsor(sp); err != nil {
		return sp, err
	}
	visible, err := s.SponsorsSectionVisible(ctx)
	if err != nil {
		return sp, err
	}
	sp.SectionVisible = &visible
	return create(ctx, s.db, s.t.Sponsors, sp, "sponsor",
		func(sp *models.Sponsor) *int { return &sp.OrderIndex })
}

// UpdateSponsor replaces a sponsor's editable fields. Visibility flags are
// managed by their own operations and are kept.
func (s *Service) UpdateSponsor(ctx context.Context, id string, sp models.Sponsor) (models.Sponsor, error) {
	normalizeSponsor(&sp)
	if err := validateSponsor(sp); err != nil {
		return sp, err
	}
	var updated models.Sponsor
	err := s.atomic(ctx, func(t content.Tables) error {
		current, err := t.Sponsors.Get(ctx, id)
		if err != nil {
			return err
		}
		sp.IsVisible, sp.SectionVisible = current.IsVisible, current.SectionVisible
		updated, err = t.Sponsors.Replace(ctx, id, sp)
		return err
	})
	return updated, content.StoreError("update sponsor "+id, err)
}

func (s *Service) DeleteSponsor(ctx context.Context, id string) error {
	return remove(ctx, s.t.Sponsors, id, "sponsor")
}

func normalizeSponsor(sp *models.Sponsor) {
	sp.Name = strings.TrimSpace(sp.Name)
	sp.WebsiteURL = strings.TrimSpace(sp.WebsiteURL)
	sp.LogoAssetID = strings.TrimSpace(sp.LogoAssetID)
	sp.LogoURL = ""
	sp.CreatedAt, sp.UpdatedAt = "", ""
}

func validateSponsor(sp models.Sponsor) error {
	fields := map[string]string{}
	if sp.Name == "" {
		fields["name"] = "required"
	}
	if !sp.Category.Valid() {
		fields["category"] = "must be principal or secondary"
	}
	checkURL(fields, "website_url", sp.WebsiteURL)
	return apperr.Validation(fields)
}

// FAQ

func (s *Service) ListFaq(ctx context.Context) ([]models.FaqItem, error) {
	items, err := s.t.Faq.List(ctx, byOrder())
	return items, content.StoreError("list faq", err)
}

func (s *Service) GetFaqItem(ctx context.Context, id string) (models.FaqItem, error) {
	f, err := s.t.Faq.Get(ctx, id)
	return f, content.StoreError("load faq item "+id, err)
}

func (s *Service) CreateFaqItem(ctx context.Context, f models.FaqItem) (models.FaqItem, error) {
	f.ID = ""
	normalizeFaq(&f)
	if err := validateFaq(f); err != nil {
		return f, err
	}
	return create(ctx, s.db, s.t.Faq, f, "faq item",
		func(f *models.FaqItem) *int { return &f.OrderIndex })
}

func (s *Service) UpdateFaqItem(ctx context.Context, id string, f models.FaqItem) (models.FaqItem, error) {
	normalizeFaq(&f)
	if err := validateFaq(f); err != nil {
		return f, err
	}
	return replace(ctx, s.t.Faq, id, f, "faq item")
}

func (s *Service) DeleteFaqItem(ctx context.Context, id string) error {
	return remove(ctx, s.t.Faq, id, "faq item")
}

func normalizeFaq(f *models.FaqItem) {
	f.Question = strings.TrimSpace(f.Question)
	f.Answer = strings.TrimSpace(f.Answer)
	f.Category = strings.TrimSpace(f.Category)
	f.CreatedAt, f.UpdatedAt = "", ""
}

func validateFaq(f models.FaqItem) error {
	fields := map[string]string{}
	if f.Question == "" {
		fields["question"] = "required"
	}
	if f.Answer == "" {
		fields["answer"] = "required"
	}
	return apperr.Validation(fields)
}

// checkURL records an error when raw is set but not an absolute http(s) URL.
func checkURL(fields map[string]string, name, raw string) {
	if raw == "" {
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		fields[name] = "must be an http or https URL"
	}
}
