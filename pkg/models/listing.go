package models

import (
	"strconv"
	"strings"
)

// Key, Position and SearchText feed the admin list views.

func joinText(parts ...string) string {
	return strings.Join(parts, " ")
}

func (e Edition) Key() string { return e.ID }
func (e Edition) SearchText() string {
	return joinText(e.Title, e.Slug, strconv.Itoa(e.Year), e.HeroSubtitle)
}

func (r RaceCategory) Key() string   { return r.ID }
func (r RaceCategory) Position() int { return r.OrderIndex }
func (r RaceCategory) SearchText() string {
	return joinText(r.Name, r.Slug, string(r.Type), r.StartTime, r.StartLocation)
}

func (p ProgramItem) Key() string        { return p.ID }
func (p ProgramItem) Position() int      { return p.OrderIndex }
func (p ProgramItem) SearchText() string { return joinText(p.Time, p.Label, p.Description) }

func (s TrainingSession) Key() string   { return s.ID }
func (s TrainingSession) Position() int { return s.OrderIndex }
func (s TrainingSession) SearchText() string {
	return joinText(s.Title, s.DayOfWeek, s.Location, s.Level, s.TargetAudience)
}

func (m CommitteeMember) Key() string   { return m.ID }
func (m CommitteeMember) Position() int { return m.OrderIndex }
func (m CommitteeMember) SearchText() string {
	return joinText(m.FirstName, m.LastName, m.Role, m.Email)
}

func (s Sponsor) Key() string        { return s.ID }
func (s Sponsor) Position() int      { return s.OrderIndex }
func (s Sponsor) SearchText() string { return joinText(s.Name, s.WebsiteURL) }

func (f FaqItem) Key() string        { return f.ID }
func (f FaqItem) Position() int      { return f.OrderIndex }
func (f FaqItem) SearchText() string { return joinText(f.Question, f.Answer, f.Category) }

func (m ContactMessage) Key() string { return m.ID }
func (m ContactMessage) SearchText() string {
	return joinText(m.Name, m.Email, m.Subject, m.Message)
}

func (r MembershipRequest) Key() string { return r.ID }
func (r MembershipRequest) SearchText() string {
	return joinText(r.FirstName, r.LastName, r.Email, r.City, r.MembershipType)
}
