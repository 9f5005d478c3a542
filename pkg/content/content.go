// Package content assembles the read bundles behind each public page and
// accepts the public contact and membership forms.
package content

import (
	"context"
	"net/mail"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Declyn50s/Traine-Savates/pkg/apperr"
	"github.com/Declyn50s/Traine-Savates/pkg/assets"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
)

const (
	featuredRaces = 6
	mainSponsors  = 6
)

type Service struct {
	t      Tables
	assets assets.Store
}

func NewService(s store.Store, a assets.Store) *Service {
	return &Service{t: NewTables(s), assets: a}
}

// GetActiveEdition returns the most recent published edition.
func (s *Service) GetActiveEdition(ctx context.Context) (models.Edition, error) {
	e, ok, err := s.t.Editions.First(ctx, PublishedEdition)
	if err != nil {
		return e, StoreError("load active edition", err)
	}
	if !ok {
		return e, apperr.NotFound("no published edition")
	}
	return e, nil
}

// GetHomeData loads the home page bundle. It fails with NotFound when no
// edition is published.
func (s *Service) GetHomeData(ctx context.Context) (models.HomeData, error) {
	var home models.HomeData
	edition, err := s.GetActiveEdition(ctx)
	if err != nil {
		return home, err
	}
	home.Edition = edition

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		races, err := s.t.Races.List(gctx, store.Where(store.Eq("edition_id", edition.ID)).
			OrderBy(store.Asc("order_index")).Take(featuredRaces))
		home.FeaturedRaces = races
		return StoreError("load featured races", err)
	})
	g.Go(func() error {
		club, _, err := s.t.Club.First(gctx, store.Query{})
		home.ClubExcerpt = club
		return StoreError("load club content", err)
	})
	g.Go(func() error {
		sponsors, err := s.t.Sponsors.List(gctx, store.Where(
			store.Eq("category", models.SponsorPrincipal),
			store.Neq("is_visible", false),
		).OrderBy(store.Asc("order_index")).Take(mainSponsors))
		home.MainSponsors = sponsors
		return StoreError("load main sponsors", err)
	})
	g.Go(func() error {
		info, _, err := s.t.Practical.First(gctx, store.Query{})
		home.PracticalInfo = info
		return StoreError("load practical info", err)
	})
	g.Go(func() error {
		visible, err := s.sectionVisible(gctx)
		home.SponsorsSectionVisible = visible
		return err
	})
	if err := g.Wait(); err != nil {
		return models.HomeData{}, err
	}

	s.resolveRaces(home.FeaturedRaces)
	s.resolveSponsors(home.MainSponsors)
	return home, nil
}

// GetEditionFull loads an edition by slug with its races and program.
func (s *Service) GetEditionFull(ctx context.Context, slug string) (models.EditionFull, error) {
	var full models.EditionFull
	edition, ok, err := s.t.Editions.First(ctx, store.Where(store.Eq("slug", slug)))
	if err != nil {
		return full, StoreError("load edition", err)
	}
	if !ok {
		return full, apperr.NotFound("edition %q not found", slug)
	}
	full.Edition = edition

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		races, err := s.t.Races.List(gctx, store.Where(store.Eq("edition_id", edition.ID)).OrderBy(store.Asc("order_index")))
		full.Races = races
		return StoreError("load races", err)
	})
	g.Go(func() error {
		program, err := s.t.Program.List(gctx, store.Where(store.Eq("edition_id", edition.ID)).OrderBy(store.Asc("order_index")))
		full.Program = program
		return StoreError("load program", err)
	})
	if err := g.Wait(); err != nil {
		return models.EditionFull{}, err
	}
	s.resolveRaces(full.Races)
	return full, nil
}

// GetClubData loads the club page. Missing club content yields a zero value.
func (s *Service) GetClubData(ctx context.Context) (models.ClubData, error) {
	var club models.ClubData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, _, err := s.t.Club.First(gctx, store.Query{})
		club.Content = c
		return StoreError("load club content", err)
	})
	g.Go(func() error {
		sessions, err := s.t.Trainings.List(gctx, ByOrder)
		club.TrainingSessions = sessions
		return StoreError("load training sessions", err)
	})
	g.Go(func() error {
		members, err := s.t.Committee.List(gctx, ByOrder)
		club.CommitteeMembers = members
		return StoreError("load committee", err)
	})
	if err := g.Wait(); err != nil {
		return models.ClubData{}, err
	}
	for i := range club.CommitteeMembers {
		m := &club.CommitteeMembers[i]
		m.PhotoURL = assets.ResolveString(s.assets, assets.CommitteePhotos.Name, m.PhotoAssetID)
	}
	return club, nil
}

func (s *Service) GetPracticalInfo(ctx context.Context) (models.PracticalInfo, error) {
	info, _, err := s.t.Practical.First(ctx, store.Query{})
	return info, StoreError("load practical info", err)
}

func (s *Service) GetFaq(ctx context.Context) ([]models.FaqItem, error) {
	items, err := s.t.Faq.List(ctx, ByOrder)
	return items, StoreError("load faq", err)
}

// GetSponsors returns visible sponsors by order_index.
func (s *Service) GetSponsors(ctx context.Context) ([]models.Sponsor, error) {
	sponsors, err := s.t.Sponsors.List(ctx, store.Where(store.Neq("is_visible", false)).OrderBy(store.Asc("order_index")))
	if err != nil {
		return nil, StoreError("load sponsors", err)
	}
	s.resolveSponsors(sponsors)
	return sponsors, nil
}

// GetSponsorGroups returns visible sponsors split by category.
func (s *Service) GetSponsorGroups(ctx context.Context) (models.SponsorGroups, error) {
	sponsors, err := s.GetSponsors(ctx)
	if err != nil {
		return models.SponsorGroups{}, err
	}
	visible, err := s.sectionVisible(ctx)
	if err != nil {
		return models.SponsorGroups{}, err
	}
	groups := GroupSponsors(sponsors)
	groups.SectionVisible = visible
	return groups, nil
}

// GroupSponsors splits sponsors by category keeping their order.
func GroupSponsors(sponsors []models.Sponsor) models.SponsorGroups {
	var g models.SponsorGroups
	for _, sp := range sponsors {
		switch sp.Category {
		case models.SponsorPrincipal:
			g.Principal = append(g.Principal, sp)
		case models.SponsorSecondary:
			g.Secondary = append(g.Secondary, sp)
		default:
			g.Other = append(g.Other, sp)
		}
	}
	return g
}

// The sponsors section is hidden as soon as one row carries section_visible=false.
func (s *Service) sectionVisible(ctx context.Context) (bool, error) {
	hidden, err := s.t.Sponsors.Count(ctx, store.Eq("section_visible", false))
	if err != nil {
		return false, StoreError("load sponsors section visibility", err)
	}
	return hidden == 0, nil
}

// SubmitContact validates the contact form and stores a new message.
func (s *Service) SubmitContact(ctx context.Context, form models.ContactForm) (models.ContactMessage, error) {
	form = models.ContactForm{
		Name:    strings.TrimSpace(form.Name),
		Email:   strings.TrimSpace(form.Email),
		Subject: strings.TrimSpace(form.Subject),
		Message: strings.TrimSpace(form.Message),
	}
	if err := ValidateContact(form); err != nil {
		return models.ContactMessage{}, err
	}
	msg, err := s.t.ContactMessages.Insert(ctx, models.ContactMessage{
		Name:    form.Name,
		Email:   form.Email,
		Subject: form.Subject,
		Message: form.Message,
		Status:  models.MessageNew,
	})
	return msg, StoreError("save contact message", err)
}

// SubmitMembership validates the membership form and stores a new request.
func (s *Service) SubmitMembership(ctx context.Context, form models.MembershipForm) (models.MembershipRequest, error) {
	req := models.MembershipRequest{
		FirstName:      strings.TrimSpace(form.FirstName),
		LastName:       strings.TrimSpace(form.LastName),
		Email:          strings.TrimSpace(form.Email),
		Phone:          strings.TrimSpace(form.Phone),
		BirthDate:      strings.TrimSpace(form.BirthDate),
		Address:        strings.TrimSpace(form.Address),
		City:           strings.TrimSpace(form.City),
		PostalCode:     strings.TrimSpace(form.PostalCode),
		MembershipType: strings.TrimSpace(form.MembershipType),
		Message:        strings.TrimSpace(form.Message),
		Status:         models.MembershipNew,
	}
	if err := ValidateMembership(req); err != nil {
		return models.MembershipRequest{}, err
	}
	saved, err := s.t.MembershipRequests.Insert(ctx, req)
	return saved, StoreError("save membership request", err)
}

func (s *Service) resolveRaces(races []models.RaceCategory) {
	for i := range races {
		races[i].RouteMapURL = assets.ResolveString(s.assets, assets.RouteMaps.Name, races[i].RouteMapImageID)
	}
}

func (s *Service) resolveSponsors(sponsors []models.Sponsor) {
	for i := range sponsors {
		sponsors[i].LogoURL = assets.ResolveString(s.assets, assets.SponsorLogos.Name, sponsors[i].LogoAssetID)
	}
}

// ValidateContact checks the required contact fields.
func ValidateContact(f models.ContactForm) error {
	fields := map[string]string{}
	required(fields, "name", f.Name)
	requiredEmail(fields, "email", f.Email)
	required(fields, "subject", f.Subject)
	required(fields, "message", f.Message)
	return apperr.Validation(fields)
}

// ValidateMembership checks the required membership fields.
func ValidateMembership(r models.MembershipRequest) error {
	fields := map[string]string{}
	required(fields, "first_name", r.FirstName)
	required(fields, "last_name", r.LastName)
	requiredEmail(fields, "email", r.Email)
	required(fields, "membership_type", r.MembershipType)
	return apperr.Validation(fields)
}

func required(fields map[string]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		fields[name] = "required"
	}
}

func requiredEmail(fields map[string]string, name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		fields[name] = "required"
		return
	}
	if !ValidEmail(value) {
		fields[name] = "invalid email address"
	}
}

// ValidEmail reports whether value is a bare address such as
// info@traine-savates.ch, without display name or brackets.
func ValidEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}
