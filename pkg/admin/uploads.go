package admin

import (
	"context"
	"io"

	"github.com/Declyn50s/Traine-Savates/pkg/apperr"
	"github.com/Declyn50s/Traine-Savates/pkg/assets"
	"github.com/Declyn50s/Traine-Savates/pkg/content"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
)

// upload stores an image under a fresh path in bucket and returns the path.
func (s *Service) upload(ctx context.Context, bucket assets.Bucket, filename string, r io.Reader) (string, error) {
	if s.assets == nil {
		return "", apperr.RequestFailure("upload "+filename, errNoAssetStore)
	}
	if !assets.IsImage(filename) {
		return "", apperr.Invalid("file", "must be a png, jpg, gif, webp or svg image")
	}
	p := assets.NewPath(bucket.Folder, filename)
	err := s.assets.Upload(ctx, bucket.Name, p, r, assets.UploadOptions{ContentType: assets.ContentType(p)})
	if err != nil {
		return "", apperr.RequestFailure("upload "+filename, err)
	}
	return p, nil
}

// UploadSponsorLogo stores a logo and points the sponsor at it.
func (s *Service) UploadSponsorLogo(ctx context.Context, id, filename string, r io.Reader) (models.Sponsor, error) {
	if _, err := s.GetSponsor(ctx, id); err != nil {
		return models.Sponsor{}, err
	}
	p, err := s.upload(ctx, assets.SponsorLogos, filename, r)
	if err != nil {
		return models.Sponsor{}, err
	}
	sp, err := s.t.Sponsors.Update(ctx, id, store.Patch{"logo_asset_id": p})
	sp.LogoURL = s.logoURL(sp.LogoAssetID)
	return sp, content.StoreError("attach logo to sponsor "+id, err)
}

// UploadCommitteePhoto stores a portrait and points the member at it.
func (s *Service) UploadCommitteePhoto(ctx context.Context, id, filename string, r io.Reader) (models.CommitteeMember, error) {
	if _, err := s.GetCommitteeMember(ctx, id); err != nil {
		return models.CommitteeMember{}, err
	}
	p, err := s.upload(ctx, assets.CommitteePhotos, filename, r)
	if err != nil {
		return models.CommitteeMember{}, err
	}
	m, err := s.t.Committee.Update(ctx, id, store.Patch{"photo_asset_id": p})
	m.PhotoURL = s.photoURL(m.PhotoAssetID)
	return m, content.StoreError("attach photo to committee member "+id, err)
}

// UploadRouteMap stores a course map image for a race.
func (s *Service) UploadRouteMap(ctx context.Context, id, filename string, r io.Reader) (models.RaceCategory, error) {
	if _, err := s.GetRace(ctx, id); err != nil {
		return models.RaceCategory{}, err
	}
	p, err := s.upload(ctx, assets.RouteMaps, filename, r)
	if err != nil {
		return models.RaceCategory{}, err
	}
	race, err := s.t.Races.Update(ctx, id, store.Patch{"route_map_image_id": p})
	race.RouteMapURL = assets.ResolveString(s.assets, assets.RouteMaps.Name, race.RouteMapImageID)
	return race, content.StoreError("attach route map to race "+id, err)
}

func (s *Service) logoURL(ref string) string {
	return assets.ResolveString(s.assets, assets.SponsorLogos.Name, ref)
}

func (s *Service) photoURL(ref string) string {
	return assets.ResolveString(s.assets, assets.CommitteePhotos.Name, ref)
}

func (s *Service) resolveCommittee(members []models.CommitteeMember) {
	for i := range members {
		members[i].PhotoURL = s.photoURL(members[i].PhotoAssetID)
	}
}
