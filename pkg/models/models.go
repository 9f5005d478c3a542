package models

// Table names in the content repository.
const (
	TableEditions           = "editions"
	TableRaceCategories     = "race_categories"
	TableProgramItems       = "program_items"
	TableClubContent        = "club_content"
	TableTrainingSessions   = "training_sessions"
	TableCommitteeMembers   = "committee_members"
	TableSponsors           = "sponsors"
	TableFaqItems           = "faq_items"
	TablePracticalInfo      = "practical_info"
	TableContactMessages    = "contact_messages"
	TableMembershipRequests = "membership_requests"
)

type Edition struct {
	ID                    string        `json:"id" yaml:"id,omitempty"`
	Slug                  string        `json:"slug" yaml:"slug"`
	Year                  int           `json:"year" yaml:"year"`
	EditionNumber         int           `json:"edition_number" yaml:"edition_number"`
	Date                  string        `json:"date" yaml:"date"` // YYYY-MM-DD
	Title                 string        `json:"title" yaml:"title"`
	HeroSubtitle          string        `json:"hero_subtitle,omitempty" yaml:"hero_subtitle,omitempty"`
	Status                EditionStatus `json:"status" yaml:"status"`
	RegistrationOnlineURL string        `json:"registration_online_url,omitempty" yaml:"registration_online_url,omitempty"`
	ResultsURL            string        `json:"results_url,omitempty" yaml:"results_url,omitempty"`
	PhotosAlbumURL        string        `json:"photos_album_url,omitempty" yaml:"photos_album_url,omitempty"`
	CreatedAt             string        `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt             string        `json:"updated_at,omitempty" yaml:"-"`
}

type RaceCategory struct {
	ID                 string   `json:"id" yaml:"id,omitempty"`
	EditionID          string   `json:"edition_id" yaml:"-"`
	Name               string   `json:"name" yaml:"name"`
	Slug               string   `json:"slug" yaml:"slug"`
	DistanceKm         float64  `json:"distance_km" yaml:"distance_km"`
	Type               RaceType `json:"type" yaml:"type"`
	StartTime          string   `json:"start_time" yaml:"start_time"`
	StartLocation      string   `json:"start_location,omitempty" yaml:"start_location,omitempty"`
	Description        string   `json:"description,omitempty" yaml:"description,omitempty"`
	MinAge             *int     `json:"min_age,omitempty" yaml:"min_age,omitempty"`
	MaxAge             *int     `json:"max_age,omitempty" yaml:"max_age,omitempty"`
	Price              *float64 `json:"price,omitempty" yaml:"price,omitempty"`
	RegistrationOnline *bool    `json:"registration_online,omitempty" yaml:"registration_online,omitempty"`
	RegistrationOnsite *bool    `json:"registration_onsite,omitempty" yaml:"registration_onsite,omitempty"`
	OnsiteSupplement   *float64 `json:"onsite_supplement,omitempty" yaml:"onsite_supplement,omitempty"`
	Refreshments       string   `json:"refreshments,omitempty" yaml:"refreshments,omitempty"`
	Facilities         string   `json:"facilities,omitempty" yaml:"facilities,omitempty"`
	Souvenir           string   `json:"souvenir,omitempty" yaml:"souvenir,omitempty"`
	RouteMapImageID    string   `json:"route_map_image_id,omitempty" yaml:"route_map_image_id,omitempty"`
	RouteGpxURL        string   `json:"route_gpx_url,omitempty" yaml:"route_gpx_url,omitempty"`
	ElevationGain      *int     `json:"elevation_gain,omitempty" yaml:"elevation_gain,omitempty"`
	OrderIndex         int      `json:"order_index" yaml:"order_index"`
	CreatedAt          string   `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt          string   `json:"updated_at,omitempty" yaml:"-"`

	// Resolved at read time from RouteMapImageID, never stored.
	RouteMapURL string `json:"-" yaml:"-"`
}

type ProgramItem struct {
	ID          string `json:"id" yaml:"id,omitempty"`
	EditionID   string `json:"edition_id" yaml:"-"`
	Time        string `json:"time" yaml:"time"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	OrderIndex  int    `json:"order_index" yaml:"order_index"`
	CreatedAt   string `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt   string `json:"updated_at,omitempty" yaml:"-"`
}

// ClubContent is a singleton record.
type ClubContent struct {
	ID           string `json:"id" yaml:"-"`
	ClubIntro    string `json:"club_intro,omitempty" yaml:"club_intro,omitempty"`
	ClubHistory  string `json:"club_history,omitempty" yaml:"club_history,omitempty"`
	ClubSpirit   string `json:"club_spirit,omitempty" yaml:"club_spirit,omitempty"`
	MembersCount *int   `json:"members_count,omitempty" yaml:"members_count,omitempty"`
	FoundedYear  *int   `json:"founded_year,omitempty" yaml:"founded_year,omitempty"`
	CreatedAt    string `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt    string `json:"updated_at,omitempty" yaml:"-"`
}

type TrainingSession struct {
	ID             string           `json:"id" yaml:"id,omitempty"`
	Category       TrainingCategory `json:"category" yaml:"category"`
	Title          string           `json:"title" yaml:"title"`
	DayOfWeek      string           `json:"day_of_week" yaml:"day_of_week"`
	StartTime      string           `json:"start_time" yaml:"start_time"`
	EndTime        string           `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	Location       string           `json:"location" yaml:"location"`
	Level          string           `json:"level,omitempty" yaml:"level,omitempty"`
	Description    string           `json:"description,omitempty" yaml:"description,omitempty"`
	TargetAudience string           `json:"target_audience,omitempty" yaml:"target_audience,omitempty"`
	OrderIndex     int              `json:"order_index" yaml:"order_index"`
	CreatedAt      string           `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt      string           `json:"updated_at,omitempty" yaml:"-"`
}

type CommitteeMember struct {
	ID           string `json:"id" yaml:"id,omitempty"`
	FirstName    string `json:"first_name" yaml:"first_name"`
	LastName     string `json:"last_name" yaml:"last_name"`
	Role         string `json:"role" yaml:"role"`
	Email        string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone        string `json:"phone,omitempty" yaml:"phone,omitempty"`
	PhotoAssetID string `json:"photo_asset_id,omitempty" yaml:"photo_asset_id,omitempty"`
	OrderIndex   int    `json:"order_index" yaml:"order_index"`
	CreatedAt    string `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt    string `json:"updated_at,omitempty" yaml:"-"`

	PhotoURL string `json:"-" yaml:"-"`
}

type Sponsor struct {
	ID          string          `json:"id" yaml:"id,omitempty"`
	Name        string          `json:"name" yaml:"name"`
	Category    SponsorCategory `json:"category" yaml:"category"`
	LogoAssetID string          `json:"logo_asset_id,omitempty" yaml:"logo_asset_id,omitempty"`
	WebsiteURL  string          `json:"website_url,omitempty" yaml:"website_url,omitempty"`
	OrderIndex  int             `json:"order_index" yaml:"order_index"`
	// nil means visible.
	IsVisible *bool `json:"is_visible,omitempty" yaml:"is_visible,omitempty"`
	// false on any row hides the sponsors section site-wide.
	SectionVisible *bool  `json:"section_visible,omitempty" yaml:"section_visible,omitempty"`
	CreatedAt      string `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt      string `json:"updated_at,omitempty" yaml:"-"`

	LogoURL string `json:"-" yaml:"-"`
}

// Visible reports whether the sponsor is shown on the public site.
func (s Sponsor) Visible() bool {
	return s.IsVisible == nil || *s.IsVisible
}

type FaqItem struct {
	ID         string `json:"id" yaml:"id,omitempty"`
	Question   string `json:"question" yaml:"question"`
	Answer     string `json:"answer" yaml:"answer"`
	Category   string `json:"category,omitempty" yaml:"category,omitempty"`
	OrderIndex int    `json:"order_index" yaml:"order_index"`
	CreatedAt  string `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt  string `json:"updated_at,omitempty" yaml:"-"`
}

// PracticalInfo is a singleton record.
type PracticalInfo struct {
	ID            string   `json:"id" yaml:"-"`
	Address       string   `json:"address,omitempty" yaml:"address,omitempty"`
	GoogleMapsURL string   `json:"google_maps_url,omitempty" yaml:"google_maps_url,omitempty"`
	TrainInfo     string   `json:"train_info,omitempty" yaml:"train_info,omitempty"`
	CarInfo       string   `json:"car_info,omitempty" yaml:"car_info,omitempty"`
	ParkingInfo   string   `json:"parking_info,omitempty" yaml:"parking_info,omitempty"`
	Facilities    string   `json:"facilities,omitempty" yaml:"facilities,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	CreatedAt     string   `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt     string   `json:"updated_at,omitempty" yaml:"-"`
}

type ContactMessage struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    MessageStatus `json:"status"`
	CreatedAt string        `json:"created_at,omitempty"`
	UpdatedAt string        `json:"updated_at,omitempty"`
}

type MembershipRequest struct {
	ID             string           `json:"id"`
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone,omitempty"`
	BirthDate      string           `json:"birth_date,omitempty"`
	Address        string           `json:"address,omitempty"`
	City           string           `json:"city,omitempty"`
	PostalCode     string           `json:"postal_code,omitempty"`
	MembershipType string           `json:"membership_type"`
	Message        string           `json:"message,omitempty"`
	Status         MembershipStatus `json:"status"`
	CreatedAt      string           `json:"created_at,omitempty"`
	UpdatedAt      string           `json:"updated_at,omitempty"`
}

// Geocoordinates is a cached geocoder answer for an address.
type Geocoordinates struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	LastAttempt int64  `json:"last_attempt,omitempty"` // Unix timestamp of last lookup
	IsFailed    bool   `json:"is_failed,omitempty"`
}
