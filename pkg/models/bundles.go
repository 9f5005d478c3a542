package models

// HomeData is the bundle behind the public home page.
type HomeData struct {
	Edition                Edition
	FeaturedRaces          []RaceCategory
	ClubExcerpt            ClubContent
	MainSponsors           []Sponsor
	PracticalInfo          PracticalInfo
	SponsorsSectionVisible bool
}

type EditionFull struct {
	Edition Edition
	Races   []RaceCategory
	Program []ProgramItem
}

type ClubData struct {
	Content          ClubContent
	TrainingSessions []TrainingSession
	CommitteeMembers []CommitteeMember
}

// SponsorGroups splits visible sponsors by category for the sponsors page.
type SponsorGroups struct {
	Principal      []Sponsor
	Secondary      []Sponsor
	Other          []Sponsor
	SectionVisible bool
}

type Dashboard struct {
	ActiveEdition       *Edition
	NewMessagesCount    int
	NewMembershipsCount int
	RecentMessages      []ContactMessage
}

type ContactForm struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type MembershipForm struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	BirthDate      string
	Address        string
	City           string
	PostalCode     string
	MembershipType string
	Message        string
}
