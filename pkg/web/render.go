package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Declyn50s/Traine-Savates/pkg/apperr"
	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
)

//go:embed templates
var templateFS embed.FS

// page is the data handed to every template.
type page struct {
	Title string
	// Nav marks the active menu entry.
	Nav    string
	Error  string
	Notice string
	Fields map[string]string
	// Self is the current back-office URL without outcome parameters.
	Self string
	Data any
}

// moveControl feeds the up and down buttons of a reorderable row.
type moveControl struct {
	Kind  string
	IDs   []string
	Index int
	Back  string
	Desc  bool
}

func (m moveControl) CanUp() bool   { return m.Index > 0 }
func (m moveControl) CanDown() bool { return m.Index < len(m.IDs)-1 }
func (m moveControl) Up() int       { return m.Index - 1 }
func (m moveControl) Down() int     { return m.Index + 1 }

type renderer struct {
	pages map[string]*template.Template
}

var printer = message.NewPrinter(language.French)

var frenchDays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

var frenchMonths = [...]string{"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre"}

var funcs = template.FuncMap{
	"longDate": longDate,
	"chf": func(v *float64) string {
		if v == nil {
			return ""
		}
		return printer.Sprintf("CHF %.2f", *v)
	},
	"km": func(v float64) string {
		return printer.Sprintf("%v km", v)
	},
	"intp": func(v *int) string {
		if v == nil {
			return ""
		}
		return strconv.Itoa(*v)
	},
	"floatp": func(v *float64) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	},
	"boolp": func(v *bool) string {
		if v == nil {
			return ""
		}
		return strconv.FormatBool(*v)
	},
	"yes": func(v *bool) bool { return v != nil && *v },
	"raceTypes": func() []models.RaceType {
		return []models.RaceType{models.RaceAdult, models.RaceJunior, models.RaceWalking, models.RaceVillageoise}
	},
	"trainingCategories": func() []models.TrainingCategory {
		return []models.TrainingCategory{models.TrainingAdult, models.TrainingJunior, models.TrainingNordic, models.TrainingPrep20km}
	},
	"sponsorCategories": func() []models.SponsorCategory {
		return []models.SponsorCategory{models.SponsorPrincipal, models.SponsorSecondary}
	},
	"editionStatuses": func() []models.EditionStatus {
		return []models.EditionStatus{models.EditionDraft, models.EditionPublished, models.EditionArchived}
	},
	"messageStatuses": func() []models.MessageStatus {
		return []models.MessageStatus{models.MessageNew, models.MessageRead, models.MessageArchived}
	},
	"membershipStatuses": func() []models.MembershipStatus {
		return []models.MembershipStatus{models.MembershipNew, models.MembershipInProgress, models.MembershipDone}
	},
	"membershipTypes": func() map[string]string {
		return map[string]string{
			"actif":   "Membre actif",
			"famille": "Famille",
			"junior":  "Junior",
			"soutien": "Membre de soutien",
		}
	},
	"newRace":     func() models.RaceCategory { return models.RaceCategory{Type: models.RaceAdult} },
	"newTraining": func() models.TrainingSession { return models.TrainingSession{Category: models.TrainingAdult} },
	"newMember":   func() models.CommitteeMember { return models.CommitteeMember{} },
	"newFaq":      func() models.FaqItem { return models.FaqItem{} },
	"newSponsor":  func() models.Sponsor { return models.Sponsor{Category: models.SponsorPrincipal} },
	"move": func(kind string, ids []string, index int, back string, desc ...bool) moveControl {
		return moveControl{Kind: kind, IDs: ids, Index: index, Back: back, Desc: len(desc) > 0 && desc[0]}
	},
	"stamp": func(s string) string {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return s
		}
		return t.Local().Format("02.01.2006 15:04")
	},
}

// longDate renders YYYY-MM-DD as "samedi 26 avril 2025".
func longDate(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%s %d %s %d", frenchDays[t.Weekday()], t.Day(), frenchMonths[t.Month()-1], t.Year())
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: map[string]*template.Template{}}
	for _, area := range []string{"public", "admin"} {
		files, err := fs.Glob(templateFS, "templates/"+area+"/*.html")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			t, err := template.New(path.Base(f)).Funcs(funcs).ParseFS(templateFS,
				"templates/"+area+"_layout.html", "templates/partials.html", f)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", f, err)
			}
			r.pages[area+"/"+strings.TrimSuffix(path.Base(f), ".html")] = t
		}
	}
	return r, nil
}

// render executes a page into a buffer first so a template error never
// leaves a half written response.
func (r *renderer) render(w http.ResponseWriter, status int, name string, p page) {
	t, ok := r.pages[name]
	if !ok {
		logger.Error("Unknown template %s", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	layout := strings.SplitN(name, "/", 2)[0] + "_layout"
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layout, p); err != nil {
		logger.Error("Failed to render %s: %v", name, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError shows p with an error banner derived from err.
func (s *Server) renderError(w http.ResponseWriter, name string, p page, err error) {
	status := apperr.HTTPStatus(err)
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		p.Error = "Contenu introuvable."
	case apperr.KindValidation:
		p.Error = "Merci de corriger les champs indiqués."
		p.Fields = apperr.FieldsOf(err)
	case apperr.KindUnauthorized:
		p.Error = "Accès refusé."
	default:
		logger.Error("Request failed on %s: %v", name, err)
		p.Error = "Le service est momentanément indisponible. Merci de réessayer plus tard."
	}
	s.pages.render(w, status, name, p)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.pages.render(w, http.StatusNotFound, "public/error", page{
		Title: "Page introuvable",
		Error: "Cette page n'existe pas.",
	})
}
