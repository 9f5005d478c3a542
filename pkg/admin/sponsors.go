package admin

import (
	"context"

	"github.com/Declyn50s/Traine-Savates/pkg/content"
	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
)

// SetSponsorVisible shows or hides one sponsor on the public site.
func (s *Service) SetSponsorVisible(ctx context.Context, id string, visible bool) (models.Sponsor, error) {
	sp, err := s.t.Sponsors.Update(ctx, id, store.Patch{"is_visible": visible})
	return sp, content.StoreError("set visibility of sponsor "+id, err)
}

// SponsorsSectionVisible reports the site-wide sponsors section flag. The
// section is hidden as soon as one row carries section_visible=false.
func (s *Service) SponsorsSectionVisible(ctx context.Context) (bool, error) {
	n, err := s.t.Sponsors.Count(ctx, store.Eq("section_visible", false))
	if err != nil {
		return false, content.StoreError("load sponsors section flag", err)
	}
	return n == 0, nil
}

// SetSponsorsSectionVisible writes the section flag on every sponsor row.
func (s *Service) SetSponsorsSectionVisible(ctx context.Context, visible bool) error {
	var n int
	err := s.atomic(ctx, func(t content.Tables) error {
		var err error
		n, err = t.Sponsors.UpdateWhere(ctx, store.Patch{"section_visible": visible})
		return err
	})
	if err != nil {
		return content.StoreError("set sponsors section flag", err)
	}
	logger.Info("Sponsors section visibility set to %t on %d rows", visible, n)
	return nil
}
