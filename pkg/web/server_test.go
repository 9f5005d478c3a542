package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/Declyn50s/Traine-Savates/pkg/admin"
	"github.com/Declyn50s/Traine-Savates/pkg/config"
	"github.com/Declyn50s/Traine-Savates/pkg/content"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/session"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
	"github.com/Declyn50s/Traine-Savates/pkg/store/boltstore"
	"github.com/Declyn50s/Traine-Savates/pkg/store/storetest"
)

const (
	adminEmail    = "comite@traine-savates.ch"
	adminPassword = "savates-2025"
)

type fixture struct {
	handler  http.Handler
	tables   content.Tables
	sessions *session.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := boltstore.Open(filepath.Join(t.TempDir(), "content.db"), boltstore.WithClock(storetest.StepClock()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	hash, err := session.HashPassword(adminPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	sessions, err := session.New(config.AdminConfig{
		Email:         adminEmail,
		PasswordHash:  hash,
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	srv, err := New(content.NewService(db, nil), admin.NewService(db, nil), sessions)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &fixture{handler: srv.Handler(), tables: content.NewTables(db), sessions: sessions}
}

func (f *fixture) get(t *testing.T, target string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authed {
		req.AddCookie(f.cookie(t))
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) post(t *testing.T, target string, form url.Values, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if authed {
		req.AddCookie(f.cookie(t))
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) cookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, _, err := f.sessions.Issue(adminEmail)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return &http.Cookie{Name: session.CookieName, Value: token}
}

func insert[T any](t *testing.T, tbl store.Table[T], v T) T {
	t.Helper()
	out, err := tbl.Insert(context.Background(), v)
	if err != nil {
		t.Fatalf("insert into %s: %v", tbl.Name(), err)
	}
	return out
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func (f *fixture) seedEdition(t *testing.T, year int, status models.EditionStatus) models.Edition {
	t.Helper()
	slug := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
	return insert(t, f.tables.Editions, models.Edition{
		Slug: slug, Year: year, EditionNumber: year - 1980, Date: slug + "-04-26",
		Title: "Course des Traîne-Savates " + slug, Status: status,
	})
}

func TestHomeWithoutPublishedEdition(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedEdition(t, 2026, models.EditionDraft)

	rec := f.get(t, "/", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	notice := document(t, rec).Find(".banner.notice").Text()
	if !strings.Contains(notice, "bientôt disponibles") {
		t.Fatalf("notice = %q", notice)
	}
}

func TestHomeAndCourse(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ed := f.seedEdition(t, 2025, models.EditionPublished)
	for i, name := range []string{"Boucle du village", "Grand tour", "Course des écoliers"} {
		insert(t, f.tables.Races, models.RaceCategory{
			EditionID: ed.ID, Name: name, DistanceKm: float64(i + 5), Type: models.RaceAdult,
			StartTime: "10:00", OrderIndex: i + 1,
		})
	}
	insert(t, f.tables.Program, models.ProgramItem{EditionID: ed.ID, Time: "08:00", Label: "Remise des dossards", OrderIndex: 1})

	rec := f.get(t, "/", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("home status = %d", rec.Code)
	}
	doc := document(t, rec)
	if got := strings.TrimSpace(doc.Find(".hero h1").Text()); got != ed.Title {
		t.Fatalf("hero title = %q, want %q", got, ed.Title)
	}
	if got := strings.TrimSpace(doc.Find(".hero-date").Text()); got != "samedi 26 avril 2025" {
		t.Fatalf("hero date = %q", got)
	}

	for _, target := range []string{"/course", "/course/2025"} {
		rec := f.get(t, target, false)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", target, rec.Code)
		}
		doc := document(t, rec)
		var names []string
		doc.Find(".races article h3").Each(func(_ int, s *goquery.Selection) {
			names = append(names, s.Text())
		})
		want := []string{"Boucle du village", "Grand tour", "Course des écoliers"}
		if diff := cmp.Diff(want, names); diff != "" {
			t.Fatalf("%s races (-want +got):\n%s", target, diff)
		}
		if n := doc.Find(".program li").Length(); n != 1 {
			t.Fatalf("%s program items = %d, want 1", target, n)
		}
	}

	if rec := f.get(t, "/course/1999", false); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown edition status = %d, want 404", rec.Code)
	}
}

func TestContactForm(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	rec := f.post(t, "/contact", url.Values{"name": {"Jeanne"}, "email": {"pas-un-email"}}, false)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status = %d, want 422", rec.Code)
	}
	doc := document(t, rec)
	if v, _ := doc.Find(`input[name="name"]`).Attr("value"); v != "Jeanne" {
		t.Fatalf("name not kept, got %q", v)
	}
	if n := doc.Find(".field-error").Length(); n != 3 {
		t.Fatalf("field errors = %d, want 3", n)
	}

	rec = f.post(t, "/contact", url.Values{
		"name": {"Jeanne"}, "email": {"jeanne@example.ch"}, "subject": {"Bénévolat"}, "message": {"Je peux aider au ravitaillement."},
	}, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("valid status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/contact?envoye=1" {
		t.Fatalf("Location = %q", loc)
	}
	msgs, err := f.tables.ContactMessages.List(context.Background(), store.Query{})
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Status != models.MessageNew {
		t.Fatalf("stored messages = %+v", msgs)
	}
}

func TestMembershipForm(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.post(t, "/adhesion", url.Values{
		"first_name": {"Léa"}, "last_name": {"Rochat"}, "email": {"lea@example.ch"}, "membership_type": {"famille"},
	}, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	n, err := f.tables.MembershipRequests.Count(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("membership requests = %d, %v", n, err)
	}
}

func TestSponsorsSectionHidden(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	hidden := false
	insert(t, f.tables.Sponsors, models.Sponsor{Name: "Boulangerie", Category: models.SponsorPrincipal, OrderIndex: 1, SectionVisible: &hidden})

	doc := document(t, f.get(t, "/sponsors", false))
	if doc.Find(".sponsors").Length() != 0 {
		t.Fatal("sponsor groups rendered while the section is hidden")
	}
	if doc.Find(".section-hidden").Length() != 1 {
		t.Fatal("missing hidden section message")
	}
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	rec := newFixture(t).get(t, "/nulle-part", false)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	for _, target := range []string{"/admin", "/admin/editions", "/admin/inbox"} {
		rec := f.get(t, target, false)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/login" {
			t.Fatalf("%s = %d %q, want redirect to login", target, rec.Code, rec.Header().Get("Location"))
		}
	}
	rec := f.post(t, "/admin/reorder/faq", url.Values{"id": {"x"}}, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("anonymous reorder status = %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	rec := f.post(t, "/admin/login", url.Values{"email": {adminEmail}, "password": {"faux"}}, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", rec.Code)
	}

	rec = f.post(t, "/admin/login", url.Values{"email": {strings.ToUpper(adminEmail)}, "password": {adminPassword}}, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", rec.Code)
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatalf("session cookie = %+v", cookie)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q", got)
	}
}

func TestAdminPagesRender(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ed := f.seedEdition(t, 2025, models.EditionPublished)
	race := insert(t, f.tables.Races, models.RaceCategory{EditionID: ed.ID, Name: "Grand tour", DistanceKm: 12.5, Type: models.RaceAdult, StartTime: "10:00", OrderIndex: 1})
	insert(t, f.tables.Program, models.ProgramItem{EditionID: ed.ID, Time: "08:00", Label: "Dossards", OrderIndex: 1})
	insert(t, f.tables.Trainings, models.TrainingSession{Category: models.TrainingAdult, Title: "Fractionné", DayOfWeek: "Mardi", StartTime: "18:30", Location: "Stade", OrderIndex: 1})
	insert(t, f.tables.Committee, models.CommitteeMember{FirstName: "Paul", LastName: "Favre", Role: "Président", OrderIndex: 1})
	insert(t, f.tables.Sponsors, models.Sponsor{Name: "Garage du Lac", Category: models.SponsorSecondary, OrderIndex: 1})
	insert(t, f.tables.Faq, models.FaqItem{Question: "Vestiaires ?", Answer: "Oui, à la salle.", OrderIndex: 1})
	insert(t, f.tables.ContactMessages, models.ContactMessage{Name: "Jeanne", Email: "j@example.ch", Subject: "Info", Message: "Bonjour", Status: models.MessageNew})
	insert(t, f.tables.MembershipRequests, models.MembershipRequest{FirstName: "Léa", LastName: "Rochat", Email: "l@example.ch", MembershipType: "famille", Status: models.MembershipNew})

	pages := []struct {
		target string
		want   string
	}{
		{"/admin", ".cards"},
		{"/admin/editions", "table tbody tr"},
		{"/admin/editions?status=archived", "table"},
		{"/admin/editions/new", `input[name="year"]`},
		{"/admin/editions/" + ed.ID, `form[action="/admin/races/` + race.ID + `"]`},
		{"/admin/club", `form[action="/admin/club"]`},
		{"/admin/practical", "details.row"},
		{"/admin/sponsors", "details.row"},
		{"/admin/inbox", ".inbox-item"},
		{"/admin/inbox?tab=memberships", ".inbox-item"},
	}
	for _, p := range pages {
		rec := f.get(t, p.target, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", p.target, rec.Code)
		}
		if document(t, rec).Find(p.want).Length() == 0 {
			t.Fatalf("%s: no element matches %s", p.target, p.want)
		}
	}
}

func TestActivateEdition(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	old := f.seedEdition(t, 2024, models.EditionPublished)
	next := f.seedEdition(t, 2025, models.EditionDraft)

	rec := f.post(t, "/admin/editions/"+next.ID+"/activate", nil, true)
	if rec.Code != http.StatusSeeOther || !strings.HasPrefix(rec.Header().Get("Location"), "/admin/editions?ok=") {
		t.Fatalf("activate = %d %q", rec.Code, rec.Header().Get("Location"))
	}
	got, err := f.tables.Editions.Get(ctx, next.ID)
	if err != nil || got.Status != models.EditionPublished {
		t.Fatalf("activated edition = %+v, %v", got, err)
	}
	got, err = f.tables.Editions.Get(ctx, old.ID)
	if err != nil || got.Status != models.EditionArchived {
		t.Fatalf("previous edition = %+v, %v", got, err)
	}

	rec = f.post(t, "/admin/editions/missing/activate", nil, true)
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=") {
		t.Fatalf("missing edition Location = %q", loc)
	}
}

func TestEditionCreateValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.post(t, "/admin/editions", url.Values{"title": {"Course 2026"}, "slug": {"2026"}, "year": {"deux mille"}}, true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if v, _ := document(t, rec).Find(`input[name="title"]`).Attr("value"); v != "Course 2026" {
		t.Fatalf("title not kept, got %q", v)
	}
}

func TestReorder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	var ids []string
	for i, q := range []string{"Un", "Deux", "Trois"} {
		ids = append(ids, insert(t, f.tables.Faq, models.FaqItem{Question: q, Answer: "-", OrderIndex: i + 1}).ID)
	}

	rec := f.post(t, "/admin/reorder/faq", url.Values{"id": {ids[2], ids[0], ids[1]}}, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("reorder status = %d, want 204", rec.Code)
	}
	faq, err := f.tables.Faq.List(ctx, content.ByOrder)
	if err != nil {
		t.Fatalf("list faq: %v", err)
	}
	var got []string
	for _, item := range faq {
		got = append(got, item.Question)
	}
	if diff := cmp.Diff([]string{"Trois", "Un", "Deux"}, got); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}

	// Move the last row up, as the arrow buttons do.
	rec = f.post(t, "/admin/reorder/faq", url.Values{
		"id": {ids[2], ids[0], ids[1]}, "from": {"2"}, "to": {"1"}, "back": {"/admin/practical"},
	}, true)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/practical" {
		t.Fatalf("move = %d %q", rec.Code, rec.Header().Get("Location"))
	}
	second, err := f.tables.Faq.Get(ctx, ids[1])
	if err != nil || second.OrderIndex != 2 {
		t.Fatalf("moved item = %+v, %v", second, err)
	}

	if rec := f.post(t, "/admin/reorder/planets", url.Values{"id": {ids[0]}}, true); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown kind status = %d, want 404", rec.Code)
	}
	if rec := f.post(t, "/admin/reorder/faq", url.Values{"id": {ids[0], "missing"}}, true); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d, want 404", rec.Code)
	}
}

func TestSponsorsDescendingOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	var ids []string
	for i, name := range []string{"Un", "Deux", "Trois"} {
		ids = append(ids, insert(t, f.tables.Sponsors, models.Sponsor{Name: name, Category: models.SponsorPrincipal, OrderIndex: i + 1}).ID)
	}

	names := func(doc *goquery.Document) []string {
		var out []string
		doc.Find("details.row summary").Each(func(_ int, s *goquery.Selection) {
			words := strings.Fields(strings.SplitN(s.Text(), "·", 2)[0])
			out = append(out, words[len(words)-1])
		})
		return out
	}

	rec := f.get(t, "/admin/sponsors?sort=desc", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	doc := document(t, rec)
	if diff := cmp.Diff([]string{"Trois", "Deux", "Un"}, names(doc)); diff != "" {
		t.Fatalf("descending rows (-want +got):\n%s", diff)
	}
	if v, _ := doc.Find(`select[name="sort"] option[selected]`).Attr("value"); v != "desc" {
		t.Fatalf("sort toggle = %q, want desc", v)
	}
	if doc.Find(`form[action="/admin/reorder/sponsors"] input[name="sort"][value="desc"]`).Length() == 0 {
		t.Fatal("move buttons do not carry the descending sort")
	}

	// Moving the top row down in the descending view keeps that view reading top down.
	rec = f.post(t, "/admin/reorder/sponsors", url.Values{
		"id": {ids[2], ids[1], ids[0]}, "from": {"0"}, "to": {"1"}, "sort": {"desc"},
		"back": {"/admin/sponsors?sort=desc"},
	}, true)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("move status = %d", rec.Code)
	}
	if diff := cmp.Diff([]string{"Deux", "Trois", "Un"}, names(document(t, f.get(t, "/admin/sponsors?sort=desc", true)))); diff != "" {
		t.Fatalf("after move (-want +got):\n%s", diff)
	}
	asc, err := f.tables.Sponsors.List(ctx, content.ByOrder)
	if err != nil {
		t.Fatalf("list sponsors: %v", err)
	}
	var got []string
	for _, sp := range asc {
		got = append(got, sp.Name)
	}
	if diff := cmp.Diff([]string{"Un", "Trois", "Deux"}, got); diff != "" {
		t.Fatalf("stored order (-want +got):\n%s", diff)
	}

	hint := document(t, f.get(t, "/admin/sponsors?q=Trois", true)).Find("p.hint").Text()
	if !strings.Contains(hint, "positions 1 à 1") || !strings.Contains(hint, "le plus ancien passe en premier") {
		t.Fatalf("filtered hint = %q", hint)
	}
}

func TestBackToStaysInAdmin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		back string
		want string
	}{
		{"/admin/club?category=adult", "/admin/club?category=adult"},
		{"https://evil.example", "/admin"},
		{"//evil.example/admin", "/admin"},
		{"", "/admin"},
	}
	for _, tt := range tests {
		f := &form{values: url.Values{"back": {tt.back}}}
		if got := backTo(f, "/admin"); got != tt.want {
			t.Errorf("backTo(%q) = %q, want %q", tt.back, got, tt.want)
		}
	}
	if got := backTo(nil, "/admin/inbox"); got != "/admin/inbox" {
		t.Errorf("backTo(nil) = %q", got)
	}
}
