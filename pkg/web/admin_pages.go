package web

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/Declyn50s/Traine-Savates/pkg/admin"
	"github.com/Declyn50s/Traine-Savates/pkg/apperr"
	"github.com/Declyn50s/Traine-Savates/pkg/listview"
	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/metrics"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
)

// adminPage starts a back-office page, picking up the outcome of the last
// redirected POST from the query string.
func adminPage(r *http.Request, title, nav string) page {
	q := r.URL.Query()
	p := page{Title: title, Nav: nav, Error: q.Get("error"), Notice: q.Get("ok")}
	q.Del("error")
	q.Del("ok")
	p.Self = r.URL.Path
	if len(q) > 0 {
		p.Self += "?" + q.Encode()
	}
	return p
}

// done finishes a POST with a redirect to target carrying the outcome.
func done(w http.ResponseWriter, r *http.Request, target, notice string, err error) {
	q := url.Values{}
	if err != nil {
		q.Set("error", describe(err))
	} else if notice != "" {
		q.Set("ok", notice)
	}
	if len(q) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// describe turns an error into a one-line banner message.
func describe(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		fields := apperr.FieldsOf(err)
		names := make([]string, 0, len(fields))
		for k := range fields {
			names = append(names, k)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, k := range names {
			parts[i] = k + ": " + fields[k]
		}
		return "Champs invalides. " + strings.Join(parts, "; ")
	case apperr.KindNotFound:
		return "Élément introuvable."
	default:
		logger.Error("Admin request failed: %v", err)
		return "L'opération a échoué. Merci de réessayer."
	}
}

// backTo returns the posted return path when it stays inside the back office.
func backTo(f *form, fallback string) string {
	if f == nil {
		return fallback
	}
	if b := f.str("back"); strings.HasPrefix(b, "/admin") && !strings.HasPrefix(b, "//") {
		return b
	}
	return fallback
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.sessions.Current(r); ok {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	s.pages.render(w, http.StatusOK, "admin/login", page{Title: "Connexion", Nav: "login"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := page{Title: "Connexion", Nav: "login"}
	f, err := parseForm(r)
	if err != nil {
		s.renderError(w, "admin/login", p, err)
		return
	}
	if err := s.sessions.Login(w, f.str("email"), f.values.Get("password")); err != nil {
		metrics.Record(metrics.EventLoginFailed)
		logger.Warn("Failed admin login for %q", f.str("email"))
		p.Error = "Email ou mot de passe incorrect."
		p.Data = f.str("email")
		s.pages.render(w, http.StatusUnauthorized, "admin/login", p)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p := adminPage(r, "Tableau de bord", "dashboard")
	d, err := s.admin.Dashboard(r.Context())
	if err != nil {
		s.renderError(w, "admin/dashboard", p, err)
		return
	}
	p.Data = d
	s.pages.render(w, http.StatusOK, "admin/dashboard", p)
}

// Editions

type editionsView struct {
	Editions []models.Edition
	Status   string
	Year     string
	Query    string
}

func (s *Server) handleEditions(w http.ResponseWriter, r *http.Request) {
	p := adminPage(r, "Éditions", "editions")
	q := r.URL.Query()
	all, err := s.admin.ListEditions(r.Context())
	if err != nil {
		s.renderError(w, "admin/editions", p, err)
		return
	}
	year, _ := strconv.Atoi(q.Get("year"))
	p.Data = editionsView{
		Editions: listview.Filter(all,
			listview.Equals(func(e models.Edition) models.EditionStatus { return e.Status }, models.EditionStatus(q.Get("status"))),
			listview.Equals(func(e models.Edition) int { return e.Year }, year),
			listview.Search[models.Edition](q.Get("q")),
		),
		Status: q.Get("status"),
		Year:   q.Get("year"),
		Query:  q.Get("q"),
	}
	s.pages.render(w, http.StatusOK, "admin/editions", p)
}

func (s *Server) handleEditionNew(w http.ResponseWriter, r *http.Request) {
	p := adminPage(r, "Nouvelle édition", "editions")
	suggested, err := s.admin.SuggestNextEdition(r.Context())
	if err != nil {
		s.renderError(w, "admin/edition_new", p, err)
		return
	}
	p.Data = suggested
	s.pages.render(w, http.StatusOK, "admin/edition_new", p)
}

func editionFromForm(f *form) models.Edition {
	return models.Edition{
		Title:                 f.str("title"),
		Slug:                  f.str("slug"),
		Year:                  f.int("year"),
		EditionNumber:         f.int("edition_number"),
		Date:                  f.str("date"),
		HeroSubtitle:          f.str("hero_subtitle"),
		Status:                models.EditionStatus(f.str("status")),
		RegistrationOnlineURL: f.str("registration_online_url"),
		ResultsURL:            f.str("results_url"),
		PhotosAlbumURL:        f.str("photos_album_url"),
	}
}

func (s *Server) handleEditionCreate(w http.ResponseWriter, r *http.Request) {
	p := adminPage(r, "Nouvelle édition", "editions")
	f, err := parseForm(r)
	if err != nil {
		s.renderError(w, "admin/edition_new", p, err)
		return
	}
	e := editionFromForm(f)
	p.Data = e
	if err := f.err(); err != nil {
		s.renderError(w, "admin/edition_new", p, err)
		return
	}
	created, err := s.admin.CreateEdition(r.Context(), e)
	if err != nil {
		s.renderError(w, "admin/edition_new", p, err)
		return
	}
	done(w, r, "/admin/editions/"+created.ID, "Édition créée.", nil)
}

type editionView struct {
	Edition models.Edition
	Races   []models.RaceCategory
	Program []models.ProgramItem
}

func (v editionView) RaceIDs() []string    { return listview.IDs(v.Races) }
func (v editionView) ProgramIDs() []string { return listview.IDs(v.Program) }

func (s *Server) handleEditionEdit(w http.ResponseWriter, r *http.Request) {
	p := adminPage(r, "Édition", "editions")
	ctx := r.Context()
	id := r.PathValue("id")
	e, err := s.admin.GetEdition(ctx, id)
	if err != nil {
		s.renderError(w, "admin/edition", p, err)
		return
	}
	races, err := s.admin.ListRaces(ctx, id)
	if err != nil {
		s.renderError(w, "admin/edition", p, err)
		return
	}
	program, err := s.admin.ListProgram(ctx, id)
	if err != nil {
		s.renderError(w, "admin/edition", p, err)
		return
	}
	p.Title = e.Title
	p.Data = editionView{Edition: e, Races: races, Program: program}
	s.pages.render(w, http.StatusOK, "admin/edition", p)
}

func (s *Server) handleEditionUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	target := "/admin/editions/" + id
	f, err := parseForm(r)
	if err != nil {
		done(w, r, target, "", err)
		return
	}
	e := editionFromForm(f)
	if err := f.err(); err != nil {
		done(w, r, target, "", err)
		return
	}
	_, err = s.admin.UpdateEdition(r.Context(), id, e)
	done(w, r, target, "Édition enregistrée.", err)
}

func (s *Server) handleEditionActivate(w http.ResponseWriter, r *http.Request) {
	e, err := s.admin.ActivateEdition(r.Context(), r.PathValue("id"))
	if err == nil {
		metrics.Record(metrics.EventEditionActivated)
	}
	done(w, r, "/admin/editions", fmt.Sprintf("L'édition %s est maintenant publiée.", e.Slug), err)
}

func (s *Server) handleEditionDuplicate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	f, err := parseForm(r)
	if err != nil {
		done(w, r, "/admin/editions", "", err)
		return
	}
	year := f.int("year")
	if err := f.err(); err != nil {
		done(w, r, "/admin/editions", "", err)
		return
	}
	if year == 0 {
		src, err := s.admin.GetEdition(r.Context(), id)
		if err != nil {
			done(w, r, "/admin/editions", "", err)
			return
		}
		year = src.Year + 1
	}
	dup, err := s.admin.DuplicateEdition(r.Context(), id, year)
	if err != nil {
		done(w, r, "/admin/editions", "", err)
		return
	}
	metrics.Record(metrics.EventEditionDuplicated)
	done(w, r, "/admin/editions/"+dup.ID, "Édition dupliquée en brouillon.", nil)
}

// Races and program

func raceFromForm(f *form) models.RaceCategory {
	return models.RaceCategory{
		Name:               f.str("name"),
		Slug:               f.str("slug"),
		DistanceKm:         f.float("distance_km"),
		Type:               models.RaceType(f.str("type")),
		StartTime:          f.str("start_time"),
		StartLocation:      f.str("start_location"),
		Description:        f.str("description"),
		MinAge:             f.intPtr("min_age"),
		MaxAge:             f.intPtr("max_age"),
		Price:              f.floatPtr("price"),
		RegistrationOnline: f.boolPtr("registration_online"),
		RegistrationOnsite: f.boolPtr("registration_onsite"),
		OnsiteSupplement:   f.floatPtr("onsite_supplement"),
		Refreshments:       f.str("refreshments"),
		Facilities:         f.str("facilities"),
		Souvenir:           f.str("souvenir"),
		RouteMapImageID:    f.str("route_map_image_id"),
		RouteGpxURL:        f.str("route_gpx_url"),
		ElevationGain:      f.intPtr("elevation_gain"),
		OrderIndex:         f.int("order_index"),
	}
}

func (s *Server) handleRaceCreate(w http.ResponseWriter, r *http.Request) {
	editionID := r.PathValue("id")
	target := "/admin/editions/" + editionID
	f, err := parseForm(r)
	if err != nil {
		done(w, r, target, "", err)
		return
	}
	race := raceFromForm(f)
	race.EditionID = editionID
	if err := f.err(); err != nil {
		done(w, r, target, "", err)
		return
	}
	_, err = s.admin.CreateRace(r.Context(), race)
	done(w, r, target, "Course ajoutée.", err)
}

func (s *Server) handleRaceUpdate(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err != nil {
		done(w, r, "/admin/editions", "", err)
		return
	}
	target := backTo(f, "/admin/editions")
	race := raceFromForm(f)
	if err := f.err(); err != nil {
		done(w, r, target, "", err)
		return
	}
	_, err = s.admin.UpdateRace(r.Context(), r.PathValue("id"), race)
	done(w, r, target, "Course enregistrée.", err)
}

func (s *Server) handleRaceDelete(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err != nil {
		done(w, r, "/admin/editions", "", err)
		return
	}
	err = s.admin.DeleteRace(r.Context(), r.PathValue("id"))
	done(w, r, backTo(f, "/admin/editions"), "Course supprimée.", err)
}

func programFromForm(f *form) models.ProgramItem {
	return models.ProgramItem{
		Time:        f.str("time"),
		Label:       f.str("label"),
		Description: f.str("description"),
		OrderIndex:  f.int("order_index"),
	}
}

func (s *Server) handleProgramCreate(w http.ResponseWriter, r *http.Request) {
	editionID := r.PathValue("id")
	target := "/admin/editions/" + editionID
	f, err := parseForm(r)
	if err != nil {
		done(w, r, target, "", err)
		return
	}
	item := programFromForm(f)
	item.EditionID = editionID
	if err := f.err(); err != nil {
		done(w, r, target, "", err)
		return
	}
	_, err = s.admin.CreateProgramItem(r.Context(), item)
	done(w, r, target, "Élément de programme ajouté.", err)
}

func (s *Server) handleProgramUpdate(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err != nil {
		done(w, r, "/admin/editions", "", err)
		return
	}
	target := backTo(f, "/admin/editions")
	item := programFromForm(f)
	if err := f.err(); err != nil {
		done(w, r, target, "", err)
		return
	}
	_, err = s.admin.UpdateProgramItem(r.Context(), r.PathValue("id"), item)
	done(w, r, target, "Programme enregistré.", err)
}

func (s *Server) handleProgramDelete(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err != nil {
		done(w, r, "/admin/editions", "", err)
		return
	}
	err = s.admin.DeleteProgramItem(r.Context(), r.PathValue("id"))
	done(w, r, backTo(f, "/admin/editions"), "Élément supprimé.", err)
}

// Club, trainings and committee

type clubAdminView struct {
	Content   models.ClubContent
	Trainings []models.TrainingSession
	Committee []models.CommitteeMember
	Category  string
	Query     string
}

func (v clubAdminView) TrainingIDs() []string  { return listview.IDs(v.Trainings) }
func (v clubAdminView) CommitteeIDs() []string { return listview.IDs(v.Committee) }

func (s *Server) handleClubAdmin(w http.ResponseWriter, r *http.Request) {
	p := adminPage(r, "Club", "club")
	ctx := r.Context()
	q := r.URL.Query()
	club, err := s.admin.GetClubContent(ctx)
	if err != nil {
		s.renderError(w, "admin/club", p, err)
		return
	}
	trainings, err := s.admin.ListTrainings(ctx)
	if err != nil {
		s.renderError(w, "admin/club", p, err)
		return
	}
	committee, err := s.admin.ListCommittee(ctx)
	if err != nil {
		s.renderError(w, "admin/club", p, err)
		return
	}
	p.Data = clubAdminView{
		Content: club,
		Trainings: listview.Filter(trainings,
			listview.Equals(func(t models.TrainingSession) models.TrainingCategory { return t.Category }, models.TrainingCategory(q.Get("category"))),
			listview.Search[models.TrainingSession](q.Get("q")),
		),
		Committee: committee,
		Category:  q.Get("category"),
		Query:     q.Get("q"),
	}
	s.pages.render(w, http.StatusOK, "admin/club", p)
}

func (s *Server) handleClubSave(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err != nil {
		done(w, r, "/admin/club", "", err)
		return
	}
	c := models.ClubContent{
		ClubIntro:    f.str("club_intro"),
		ClubHistory:  f.str("club_history"),
		ClubSpirit:   f.str("club_spirit"),
		MembersCount: f.intPtr("members_count"),
		FoundedYear:  f.intPtr("founded_year"),
	}
	if err := f.err(); err != nil {
		done(w, r, "/admin/club", "", err)
		return
	}
	_, err = s.admin.SaveClubContent(r.Context(), c)
	done(w, r, "/admin/club", "Présentation du club enregistrée.", err)
}

func trainingFromForm(f *form) models.TrainingSession {
	return models.TrainingSession{
		Category:       models.TrainingCategory(f.str("category")),
		Title:          f.str("title"),
		DayOfWeek:      f.str("day_of_week"),
		StartTime:      f.str("start_time"),
		EndTime:        f.str("end_time"),
		Location:       f.str("location"),
		Level:          f.str("level"),
		Description:    f.str("description"),
		TargetAudience: f.str("target_audience"),
		OrderIndex:     f.int("order_index"),
	}
}

func (s *Server) handleTrainingCreate(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err == nil {
		t := trainingFromForm(f)
		if err = f.err(); err == nil {
			_, err = s.admin.CreateTraining(r.Context(), t)
		}
	}
	done(w, r, "/admin/club", "Entraînement ajouté.", err)
}

func (s *Server) handleTrainingUpdate(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err == nil {
		t := trainingFromForm(f)
		if err = f.err(); err == nil {
			_, err = s.admin.UpdateTraining(r.Context(), r.PathValue("id"), t)
		}
	}
	done(w, r, "/admin/club", "Entraînement enregistré.", err)
}

func (s *Server) handleTrainingDelete(w http.ResponseWriter, r *http.Request) {
	err := s.admin.DeleteTraining(r.Context(), r.PathValue("id"))
	done(w, r, "/admin/club", "Entraînement supprimé.", err)
}

func memberFromForm(f *form) models.CommitteeMember {
	return models.CommitteeMember{
		FirstName:    f.str("first_name"),
		LastName:     f.str("last_name"),
		Role:         f.str("role"),
		Email:        f.str("email"),
		Phone:        f.str("phone"),
		PhotoAssetID: f.str("photo_asset_id"),
		OrderIndex:   f.int("order_index"),
	}
}

func (s *Server) handleMemberCreate(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err == nil {
		m := memberFromForm(f)
		if err = f.err(); err == nil {
			_, err = s.admin.CreateCommitteeMember(r.Context(), m)
		}
	}
	done(w, r, "/admin/club", "Membre du comité ajouté.", err)
}

func (s *Server) handleMemberUpdate(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err == nil {
		m := memberFromForm(f)
		if err = f.err(); err == nil {
			_, err = s.admin.UpdateCommitteeMember(r.Context(), r.PathValue("id"), m)
		}
	}
	done(w, r, "/admin/club", "Membre du comité enregistré.", err)
}

func (s *Server) handleMemberDelete(w http.ResponseWriter, r *http.Request) {
	err := s.admin.DeleteCommitteeMember(r.Context(), r.PathValue("id"))
	done(w, r, "/admin/club", "Membre du comité supprimé.", err)
}

// Practical info and FAQ

type practicalAdminView struct {
	Info  models.PracticalInfo
	Faq   []models.FaqItem
	Query string
}

func (v practicalAdminView) FaqIDs() []string { return listview.IDs(v.Faq) }

func (s *Server) handlePracticalAdmin(w http.ResponseWriter, r *http.Request) {
	p := adminPage(r, "Infos pratiques", "practical")
	info, err := s.admin.GetPracticalInfo(r.Context())
	if err != nil {
		s.renderError(w, "admin/practical", p, err)
		return
	}
	faq, err := s.admin.ListFaq(r.Context())
	if err != nil {
		s.renderError(w, "admin/practical", p, err)
		return
	}
	q := r.URL.Query().Get("q")
	p.Data = practicalAdminView{Info: info, Faq: listview.Filter(faq, listview.Search[models.FaqItem](q)), Query: q}
	s.pages.render(w, http.StatusOK, "admin/practical", p)
}

func (s *Server) handlePracticalSave(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err == nil {
		info := models.PracticalInfo{
			Address:       f.str("address"),
			GoogleMapsURL: f.str("google_maps_url"),
			TrainInfo:     f.str("train_info"),
			CarInfo:       f.str("car_info"),
			ParkingInfo:   f.str("parking_info"),
			Facilities:    f.str("facilities"),
			Latitude:      f.floatPtr("latitude"),
			Longitude:     f.floatPtr("longitude"),
		}
		if err = f.err(); err == nil {
			_, err = s.admin.SavePracticalInfo(r.Context(), info)
		}
	}
	done(w, r, "/admin/practical", "Infos pratiques enregistrées.", err)
}

func faqFromForm(f *form) models.FaqItem {
	return models.FaqItem{
		Question:   f.str("question"),
		Answer:     f.str("answer"),
		Category:   f.str("category"),
		OrderIndex: f.int("order_index"),
	}
}

func (s *Server) handleFaqCreate(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err == nil {
		item := faqFromForm(f)
		if err = f.err(); err == nil {
			_, err = s.admin.CreateFaqItem(r.Context(), item)
		}
	}
	done(w, r, "/admin/practical", "Question ajoutée.", err)
}

func (s *Server) handleFaqUpdate(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err == nil {
		item := faqFromForm(f)
		if err = f.err(); err == nil {
			_, err = s.admin.UpdateFaqItem(r.Context(), r.PathValue("id"), item)
		}
	}
	done(w, r, "/admin/practical", "Question enregistrée.", err)
}

func (s *Server) handleFaqDelete(w http.ResponseWriter, r *http.Request) {
	err := s.admin.DeleteFaqItem(r.Context(), r.PathValue("id"))
	done(w, r, "/admin/practical", "Question supprimée.", err)
}

// Sponsors

// sortDesc is the sort parameter value listing rows from the highest order_index.
const sortDesc = "desc"

type sponsorsAdminView struct {
	Sponsors       []models.Sponsor
	SectionVisible bool
	Category       string
	Visibility     string
	Query          string
	// Filtered is set when the list is a subset; reordering then renumbers
	// only the shown rows.
	Filtered bool
	Desc     bool
}

func (v sponsorsAdminView) IDs() []string { return listview.IDs(v.Sponsors) }

func (s *Server) handleSponsorsAdmin(w http.ResponseWriter, r *http.Request) {
	p := adminPage(r, "Sponsors", "sponsors")
	q := r.URL.Query()
	all, err := s.admin.ListSponsors(r.Context())
	if err != nil {
		s.renderError(w, "admin/sponsors", p, err)
		return
	}
	section, err := s.admin.SponsorsSectionVisible(r.Context())
	if err != nil {
		s.renderError(w, "admin/sponsors", p, err)
		return
	}
	var visibility listview.Predicate[models.Sponsor]
	switch q.Get("visibility") {
	case "visible":
		visibility = func(sp models.Sponsor) bool { return sp.Visible() }
	case "hidden":
		visibility = func(sp models.Sponsor) bool { return !sp.Visible() }
	}
	shown := listview.Filter(all,
		listview.Equals(func(sp models.Sponsor) models.SponsorCategory { return sp.Category }, models.SponsorCategory(q.Get("category"))),
		visibility,
		listview.Search[models.Sponsor](q.Get("q")),
	)
	desc := q.Get("sort") == sortDesc
	p.Data = sponsorsAdminView{
		Sponsors:       listview.SortByOrder(shown, desc),
		SectionVisible: section,
		Category:       q.Get("category"),
		Visibility:     q.Get("visibility"),
		Query:          q.Get("q"),
		Filtered:       len(shown) != len(all),
		Desc:           desc,
	}
	s.pages.render(w, http.StatusOK, "admin/sponsors", p)
}

func sponsorFromForm(f *form) models.Sponsor {
	return models.Sponsor{
		Name:        f.str("name"),
		Category:    models.SponsorCategory(f.str("category")),
		LogoAssetID: f.str("logo_asset_id"),
		WebsiteURL:  f.str("website_url"),
		OrderIndex:  f.int("order_index"),
	}
}

func (s *Server) handleSponsorCreate(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err == nil {
		sp := sponsorFromForm(f)
		if err = f.err(); err == nil {
			_, err = s.admin.CreateSponsor(r.Context(), sp)
		}
	}
	done(w, r, "/admin/sponsors", "Sponsor ajouté.", err)
}

func (s *Server) handleSponsorUpdate(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err == nil {
		sp := sponsorFromForm(f)
		if err = f.err(); err == nil {
			_, err = s.admin.UpdateSponsor(r.Context(), r.PathValue("id"), sp)
		}
	}
	done(w, r, "/admin/sponsors", "Sponsor enregistré.", err)
}

func (s *Server) handleSponsorDelete(w http.ResponseWriter, r *http.Request) {
	err := s.admin.DeleteSponsor(r.Context(), r.PathValue("id"))
	done(w, r, "/admin/sponsors", "Sponsor supprimé.", err)
}

func (s *Server) handleSponsorVisibility(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err == nil {
		_, err = s.admin.SetSponsorVisible(r.Context(), r.PathValue("id"), f.bool("visible"))
	}
	done(w, r, "/admin/sponsors", "Visibilité mise à jour.", err)
}

func (s *Server) handleSponsorsSection(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err == nil {
		err = s.admin.SetSponsorsSectionVisible(r.Context(), f.bool("visible"))
	}
	done(w, r, "/admin/sponsors", "Section sponsors mise à jour.", err)
}

// Inbox

type inboxView struct {
	Tab         string
	Status      string
	Query       string
	Messages    []models.ContactMessage
	Memberships []models.MembershipRequest
}

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	p := adminPage(r, "Messages", "inbox")
	q := r.URL.Query()
	v := inboxView{Tab: q.Get("tab"), Status: q.Get("status"), Query: q.Get("q")}
	var err error
	if v.Tab == "memberships" {
		var reqs []models.MembershipRequest
		reqs, err = s.admin.ListMembershipRequests(r.Context(), models.MembershipStatus(v.Status))
		v.Memberships = listview.Filter(reqs, listview.Search[models.MembershipRequest](v.Query))
	} else {
		v.Tab = "messages"
		var msgs []models.ContactMessage
		msgs, err = s.admin.ListContactMessages(r.Context(), models.MessageStatus(v.Status))
		v.Messages = listview.Filter(msgs, listview.Search[models.ContactMessage](v.Query))
	}
	p.Data = v
	if err != nil {
		s.renderError(w, "admin/inbox", p, err)
		return
	}
	s.pages.render(w, http.StatusOK, "admin/inbox", p)
}

func (s *Server) handleMessageStatus(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err == nil {
		_, err = s.admin.SetContactStatus(r.Context(), r.PathValue("id"), models.MessageStatus(f.str("status")))
	}
	done(w, r, backTo(f, "/admin/inbox"), "Statut mis à jour.", err)
}

func (s *Server) handleMembershipStatus(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err == nil {
		_, err = s.admin.SetMembershipStatus(r.Context(), r.PathValue("id"), models.MembershipStatus(f.str("status")))
	}
	done(w, r, backTo(f, "/admin/inbox?tab=memberships"), "Statut mis à jour.", err)
}

// Reordering

// handleReorder persists the posted id order. With from/to set the row at
// from is first moved to to, as the up and down buttons do.
func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	kind, err := admin.ParseKind(r.PathValue("kind"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	f, err := parseForm(r)
	if err != nil {
		done(w, r, "/admin", "", err)
		return
	}
	ids := f.all("id")
	desc := f.str("sort") == sortDesc
	if f.str("from") != "" && f.str("to") != "" {
		from, to := f.int("from"), f.int("to")
		if err = f.err(); err == nil {
			_, err = s.admin.Move(r.Context(), kind, ids, from, to, desc)
		}
	} else {
		err = s.admin.Reorder(r.Context(), kind, ids, desc)
	}
	if err == nil {
		metrics.Record(metrics.EventReordered)
	}
	if f.str("back") == "" {
		if err != nil {
			http.Error(w, describe(err), apperr.HTTPStatus(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	done(w, r, backTo(f, "/admin"), "", err)
}
