package models

type EditionStatus string

const (
	EditionDraft     EditionStatus = "draft"
	EditionPublished EditionStatus = "published"
	EditionArchived  EditionStatus = "archived"
)

func (s EditionStatus) Valid() bool {
	switch s {
	case EditionDraft, EditionPublished, EditionArchived:
		return true
	}
	return false
}

type RaceType string

const (
	RaceAdult       RaceType = "adult"
	RaceJunior      RaceType = "junior"
	RaceWalking     RaceType = "walking"
	RaceVillageoise RaceType = "villageoise"
)

func (t RaceType) Valid() bool {
	switch t {
	case RaceAdult, RaceJunior, RaceWalking, RaceVillageoise:
		return true
	}
	return false
}

type TrainingCategory string

const (
	TrainingAdult    TrainingCategory = "adult"
	TrainingJunior   TrainingCategory = "junior"
	TrainingNordic   TrainingCategory = "nordic"
	TrainingPrep20km TrainingCategory = "prep_20km"
)

func (c TrainingCategory) Valid() bool {
	switch c {
	case TrainingAdult, TrainingJunior, TrainingNordic, TrainingPrep20km:
		return true
	}
	return false
}

type SponsorCategory string

const (
	SponsorPrincipal SponsorCategory = "principal"
	SponsorSecondary SponsorCategory = "secondary"
)

func (c SponsorCategory) Valid() bool {
	return c == SponsorPrincipal || c == SponsorSecondary
}

type MessageStatus string

const (
	MessageNew      MessageStatus = "new"
	MessageRead     MessageStatus = "read"
	MessageArchived MessageStatus = "archived"
)

func (s MessageStatus) Valid() bool {
	switch s {
	case MessageNew, MessageRead, MessageArchived:
		return true
	}
	return false
}

type MembershipStatus string

const (
	MembershipNew        MembershipStatus = "new"
	MembershipInProgress MembershipStatus = "in_progress"
	MembershipDone       MembershipStatus = "done"
)

func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipNew, MembershipInProgress, MembershipDone:
		return true
	}
	return false
}
