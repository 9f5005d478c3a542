package content

import (
	"errors"

	"github.com/Declyn50s/Traine-Savates/pkg/apperr"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
)

// Tables binds every entity collection to one store.
type Tables struct {
	Editions           store.Table[models.Edition]
	Races              store.Table[models.RaceCategory]
	Program            store.Table[models.ProgramItem]
	Club               store.Table[models.ClubContent]
	Trainings          store.Table[models.TrainingSession]
	Committee          store.Table[models.CommitteeMember]
	Sponsors           store.Table[models.Sponsor]
	Faq                store.Table[models.FaqItem]
	Practical          store.Table[models.PracticalInfo]
	ContactMessages    store.Table[models.ContactMessage]
	MembershipRequests store.Table[models.MembershipRequest]
}

func NewTables(s store.Store) Tables {
	return Tables{
		Editions:           store.NewTable[models.Edition](s, models.TableEditions),
		Races:              store.NewTable[models.RaceCategory](s, models.TableRaceCategories),
		Program:            store.NewTable[models.ProgramItem](s, models.TableProgramItems),
		Club:               store.NewTable[models.ClubContent](s, models.TableClubContent),
		Trainings:          store.NewTable[models.TrainingSession](s, models.TableTrainingSessions),
		Committee:          store.NewTable[models.CommitteeMember](s, models.TableCommitteeMembers),
		Sponsors:           store.NewTable[models.Sponsor](s, models.TableSponsors),
		Faq:                store.NewTable[models.FaqItem](s, models.TableFaqItems),
		Practical:          store.NewTable[models.PracticalInfo](s, models.TablePracticalInfo),
		ContactMessages:    store.NewTable[models.ContactMessage](s, models.TableContactMessages),
		MembershipRequests: store.NewTable[models.MembershipRequest](s, models.TableMembershipRequests),
	}
}

// ByOrder sorts a collection for display.
var ByOrder = store.Query{Order: []store.Order{store.Asc("order_index")}}

// PublishedEdition selects the most recent published edition.
var PublishedEdition = store.Query{
	Filters: []store.Filter{store.Eq("status", models.EditionPublished)},
	Order:   []store.Order{store.Desc("date")},
	Limit:   1,
}

// StoreError classifies a repository error for the façades.
func StoreError(msg string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return &apperr.Error{Kind: apperr.KindNotFound, Message: msg + ": not found", Cause: err}
	}
	return apperr.RequestFailure(msg, err)
}
