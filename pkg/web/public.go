package web

import (
	"net/http"

	"github.com/Declyn50s/Traine-Savates/pkg/apperr"
	"github.com/Declyn50s/Traine-Savates/pkg/metrics"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	p := page{Title: "Accueil", Nav: "home"}
	home, err := s.content.GetHomeData(r.Context())
	if err != nil {
		if apperr.IsNotFound(err) {
			p.Notice = "Les informations de la prochaine édition seront bientôt disponibles."
			s.pages.render(w, http.StatusOK, "public/home", p)
			return
		}
		s.renderError(w, "public/home", p, err)
		return
	}
	p.Data = home
	s.pages.render(w, http.StatusOK, "public/home", p)
}

func (s *Server) handleCourse(w http.ResponseWriter, r *http.Request) {
	p := page{Title: "La course", Nav: "course"}
	slug := r.PathValue("slug")
	if slug == "" {
		active, err := s.content.GetActiveEdition(r.Context())
		if err != nil {
			s.renderError(w, "public/course", p, err)
			return
		}
		slug = active.Slug
	}
	full, err := s.content.GetEditionFull(r.Context(), slug)
	if err != nil {
		s.renderError(w, "public/course", p, err)
		return
	}
	p.Title = full.Edition.Title
	p.Data = full
	s.pages.render(w, http.StatusOK, "public/course", p)
}

func (s *Server) handleClub(w http.ResponseWriter, r *http.Request) {
	p := page{Title: "Le club", Nav: "club"}
	club, err := s.content.GetClubData(r.Context())
	if err != nil {
		s.renderError(w, "public/club", p, err)
		return
	}
	p.Data = club
	s.pages.render(w, http.StatusOK, "public/club", p)
}

type practicalView struct {
	Info models.PracticalInfo
	Faq  []models.FaqItem
}

func (s *Server) handlePractical(w http.ResponseWriter, r *http.Request) {
	p := page{Title: "Infos pratiques", Nav: "practical"}
	info, err := s.content.GetPracticalInfo(r.Context())
	if err != nil {
		s.renderError(w, "public/practical", p, err)
		return
	}
	faq, err := s.content.GetFaq(r.Context())
	if err != nil {
		s.renderError(w, "public/practical", p, err)
		return
	}
	p.Data = practicalView{Info: info, Faq: faq}
	s.pages.render(w, http.StatusOK, "public/practical", p)
}

func (s *Server) handleSponsors(w http.ResponseWriter, r *http.Request) {
	p := page{Title: "Sponsors", Nav: "sponsors"}
	groups, err := s.content.GetSponsorGroups(r.Context())
	if err != nil {
		s.renderError(w, "public/sponsors", p, err)
		return
	}
	p.Data = groups
	s.pages.render(w, http.StatusOK, "public/sponsors", p)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	p := page{Title: "Contact", Nav: "contact", Data: models.ContactForm{}}
	if r.URL.Query().Get("envoye") == "1" {
		p.Notice = "Merci, votre message a bien été envoyé."
	}
	s.pages.render(w, http.StatusOK, "public/contact", p)
}

func (s *Server) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	p := page{Title: "Contact", Nav: "contact", Data: models.ContactForm{}}
	f, err := parseForm(r)
	if err != nil {
		s.renderError(w, "public/contact", p, err)
		return
	}
	submitted := models.ContactForm{
		Name:    f.str("name"),
		Email:   f.str("email"),
		Subject: f.str("subject"),
		Message: f.str("message"),
	}
	p.Data = submitted
	if _, err := s.content.SubmitContact(r.Context(), submitted); err != nil {
		s.renderError(w, "public/contact", p, err)
		return
	}
	metrics.Record(metrics.EventContactSubmitted)
	http.Redirect(w, r, "/contact?envoye=1", http.StatusSeeOther)
}

func (s *Server) handleMembership(w http.ResponseWriter, r *http.Request) {
	p := page{Title: "Adhésion", Nav: "membership", Data: models.MembershipForm{}}
	if r.URL.Query().Get("envoye") == "1" {
		p.Notice = "Merci, votre demande d'adhésion a bien été transmise au comité."
	}
	s.pages.render(w, http.StatusOK, "public/membership", p)
}

func (s *Server) handleMembershipSubmit(w http.ResponseWriter, r *http.Request) {
	p := page{Title: "Adhésion", Nav: "membership", Data: models.MembershipForm{}}
	f, err := parseForm(r)
	if err != nil {
		s.renderError(w, "public/membership", p, err)
		return
	}
	submitted := models.MembershipForm{
		FirstName:      f.str("first_name"),
		LastName:       f.str("last_name"),
		Email:          f.str("email"),
		Phone:          f.str("phone"),
		BirthDate:      f.str("birth_date"),
		Address:        f.str("address"),
		City:           f.str("city"),
		PostalCode:     f.str("postal_code"),
		MembershipType: f.str("membership_type"),
		Message:        f.str("message"),
	}
	p.Data = submitted
	if _, err := s.content.SubmitMembership(r.Context(), submitted); err != nil {
		s.renderError(w, "public/membership", p, err)
		return
	}
	metrics.Record(metrics.EventMembershipSubmitted)
	http.Redirect(w, r, "/adhesion?envoye=1", http.StatusSeeOther)
}
