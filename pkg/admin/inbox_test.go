package admin

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Declyn50s/Traine-Savates/pkg/apperr"
	"github.com/Declyn50s/Traine-Savates/pkg/assets"
	"github.com/Declyn50s/Traine-Savates/pkg/listview"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
)

func TestInbox(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, tables := newTestService(t)
	first := mustInsert(t, tables.ContactMessages, models.ContactMessage{Name: "Ana", Email: "ana@example.ch", Subject: "a", Message: "a", Status: models.MessageNew})
	mustInsert(t, tables.ContactMessages, models.ContactMessage{Name: "Ben", Email: "ben@example.ch", Subject: "b", Message: "b", Status: models.MessageRead})
	mustInsert(t, tables.ContactMessages, models.ContactMessage{Name: "Cléa", Email: "clea@example.ch", Subject: "c", Message: "c", Status: models.MessageNew})
	mustInsert(t, tables.MembershipRequests, models.MembershipRequest{FirstName: "Léa", LastName: "Rochat", Email: "lea@example.ch", MembershipType: "adulte", Status: models.MembershipNew})

	all, err := svc.ListContactMessages(ctx, "")
	if err != nil {
		t.Fatalf("ListContactMessages: %v", err)
	}
	var names []string
	for _, m := range all {
		names = append(names, m.Name)
	}
	if diff := cmp.Diff([]string{"Cléa", "Ben", "Ana"}, names); diff != "" {
		t.Fatalf("messages (-want +got):\n%s", diff)
	}

	fresh, err := svc.ListContactMessages(ctx, models.MessageNew)
	if err != nil || len(fresh) != 2 {
		t.Fatalf("new messages = %d, %v; want 2", len(fresh), err)
	}
	if _, err := svc.ListContactMessages(ctx, "spam"); !apperr.IsValidation(err) {
		t.Fatalf("unknown status err = %v, want validation", err)
	}

	if _, err := svc.SetContactStatus(ctx, first.ID, "deleted"); !apperr.IsValidation(err) {
		t.Fatalf("bad status err = %v, want validation", err)
	}
	read, err := svc.SetContactStatus(ctx, first.ID, models.MessageArchived)
	if err != nil || read.Status != models.MessageArchived {
		t.Fatalf("SetContactStatus = %q, %v", read.Status, err)
	}

	d, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.ActiveEdition != nil || d.NewMessagesCount != 1 || d.NewMembershipsCount != 1 || len(d.RecentMessages) != 3 {
		t.Fatalf("dashboard = %+v", d)
	}

	reqs, err := svc.ListMembershipRequests(ctx, models.MembershipNew)
	if err != nil || len(reqs) != 1 {
		t.Fatalf("membership requests = %d, %v", len(reqs), err)
	}
	done, err := svc.SetMembershipStatus(ctx, reqs[0].ID, models.MembershipDone)
	if err != nil || done.Status != models.MembershipDone {
		t.Fatalf("SetMembershipStatus = %q, %v", done.Status, err)
	}
	if _, err := svc.SetMembershipStatus(ctx, "missing", models.MembershipDone); !apperr.IsNotFound(err) {
		t.Fatalf("missing request err = %v, want NotFound", err)
	}
}

func TestReorder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newTestService(t)
	var created []models.FaqItem
	for _, q := range []string{"Parking ?", "Douches ?", "Dossards ?"} {
		f, err := svc.CreateFaqItem(ctx, models.FaqItem{Question: q, Answer: "Oui"})
		if err != nil {
			t.Fatalf("CreateFaqItem: %v", err)
		}
		created = append(created, f)
	}

	dropped, err := listview.Move(listview.IDs(created), 2, 0)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if err := svc.Apply(ctx, KindFaq, listview.Renumber(dropped, false)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	reloaded, err := svc.ListFaq(ctx)
	if err != nil {
		t.Fatalf("ListFaq: %v", err)
	}
	var got []string
	var positions []int
	for _, f := range reloaded {
		got = append(got, f.Question)
		positions = append(positions, f.OrderIndex)
	}
	if diff := cmp.Diff([]string{"Dossards ?", "Parking ?", "Douches ?"}, got); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, positions); diff != "" {
		t.Fatalf("positions (-want +got):\n%s", diff)
	}

	ids := listview.IDs(reloaded)
	err = svc.Reorder(ctx, KindFaq, []string{ids[2], "missing", ids[0]}, false)
	if !apperr.IsNotFound(err) {
		t.Fatalf("reorder with unknown id err = %v, want NotFound", err)
	}
	after, _ := svc.ListFaq(ctx)
	if diff := cmp.Diff(ids, listview.IDs(after)); diff != "" {
		t.Fatalf("failed reorder changed rows (-want +got):\n%s", diff)
	}

	moved, err := svc.Move(ctx, KindFaq, ids, 0, 2, false)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	after, _ = svc.ListFaq(ctx)
	if diff := cmp.Diff(moved, listview.IDs(after)); diff != "" {
		t.Fatalf("moved order (-want +got):\n%s", diff)
	}

	if err := svc.Reorder(ctx, KindFaq, []string{ids[0], ids[0]}, false); !apperr.IsValidation(err) {
		t.Fatalf("duplicate ids err = %v, want validation", err)
	}
	if _, err := ParseKind("editions"); !apperr.IsNotFound(err) {
		t.Fatalf("ParseKind(editions) err = %v, want NotFound", err)
	}
}

func TestUploadSponsorLogo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newTestService(t)
	sp, err := svc.CreateSponsor(ctx, models.Sponsor{Name: "Bakery", Category: models.SponsorPrincipal})
	if err != nil {
		t.Fatalf("CreateSponsor: %v", err)
	}

	if _, err := svc.UploadSponsorLogo(ctx, sp.ID, "logo.exe", strings.NewReader("x")); !apperr.IsValidation(err) {
		t.Fatalf("non image err = %v, want validation", err)
	}

	updated, err := svc.UploadSponsorLogo(ctx, sp.ID, "Logo.PNG", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("UploadSponsorLogo: %v", err)
	}
	if !strings.HasPrefix(updated.LogoAssetID, assets.SponsorLogos.Folder+"/") || !strings.HasSuffix(updated.LogoAssetID, ".png") {
		t.Fatalf("logo path = %q", updated.LogoAssetID)
	}
	if want := "https://cdn.test/sponsor-logos/" + updated.LogoAssetID; updated.LogoURL != want {
		t.Fatalf("logo url = %q, want %q", updated.LogoURL, want)
	}
	fa := svc.assets.(*fakeAssets)
	if len(fa.uploads) != 1 || fa.uploads[0].bucket != "sponsor-logos" || fa.uploads[0].body != "png-bytes" {
		t.Fatalf("uploads = %+v", fa.uploads)
	}

	fa.err = errors.New("quota exceeded")
	if _, err := svc.UploadSponsorLogo(ctx, sp.ID, "logo.png", strings.NewReader("x")); apperr.KindOf(err) != apperr.KindRequestFailure {
		t.Fatalf("failed upload err = %v, want request failure", err)
	}
	if _, err := svc.UploadCommitteePhoto(ctx, "missing", "me.jpg", strings.NewReader("x")); !apperr.IsNotFound(err) {
		t.Fatalf("missing member err = %v, want NotFound", err)
	}
}

func TestSaveSingletons(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	geo := &fakeGeocoder{geo: models.Geocoordinates{Lat: "46.5191", Lon: "6.6323"}}
	svc, tables := newTestService(t, WithGeocoder(geo))

	first, err := svc.SaveClubContent(ctx, models.ClubContent{ClubIntro: " Bienvenue "})
	if err != nil {
		t.Fatalf("SaveClubContent: %v", err)
	}
	second, err := svc.SaveClubContent(ctx, models.ClubContent{ClubIntro: "Bienvenue au club"})
	if err != nil {
		t.Fatalf("SaveClubContent: %v", err)
	}
	if first.ID != second.ID || first.ClubIntro != "Bienvenue" {
		t.Fatalf("club saves = %q/%q, %q", first.ID, second.ID, first.ClubIntro)
	}
	if n, _ := tables.Club.Count(ctx); n != 1 {
		t.Fatalf("club rows = %d, want 1", n)
	}

	info, err := svc.SavePracticalInfo(ctx, models.PracticalInfo{Address: "Place du Village 1, Vufflens"})
	if err != nil {
		t.Fatalf("SavePracticalInfo: %v", err)
	}
	if info.Latitude == nil || *info.Latitude != 46.5191 || info.GoogleMapsURL == "" {
		t.Fatalf("practical info = %+v", info)
	}

	lat, lon := 1.0, 2.0
	if _, err := svc.SavePracticalInfo(ctx, models.PracticalInfo{Address: "Ailleurs", Latitude: &lat, Longitude: &lon}); err != nil {
		t.Fatalf("SavePracticalInfo: %v", err)
	}
	if geo.calls != 1 {
		t.Fatalf("geocoder calls = %d, want 1", geo.calls)
	}

	geo.err = errors.New("timeout")
	saved, err := svc.SavePracticalInfo(ctx, models.PracticalInfo{Address: "Nowhere"})
	if err != nil {
		t.Fatalf("geocoder failure blocked save: %v", err)
	}
	if saved.Latitude != nil {
		t.Fatalf("latitude = %v, want nil", *saved.Latitude)
	}
}
