package admin

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Declyn50s/Traine-Savates/pkg/content"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
)

const recentMessages = 5

// Dashboard loads the back-office landing counters.
func (s *Service) Dashboard(ctx context.Context) (models.Dashboard, error) {
	var d models.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e, err := s.ActiveEdition(gctx)
		d.ActiveEdition = e
		return err
	})
	g.Go(func() error {
		n, err := s.t.ContactMessages.Count(gctx, store.Eq("status", models.MessageNew))
		d.NewMessagesCount = n
		return content.StoreError("count new messages", err)
	})
	g.Go(func() error {
		n, err := s.t.MembershipRequests.Count(gctx, store.Eq("status", models.MembershipNew))
		d.NewMembershipsCount = n
		return content.StoreError("count new membership requests", err)
	})
	g.Go(func() error {
		msgs, err := s.t.ContactMessages.List(gctx, store.Query{}.OrderBy(newestFirst).Take(recentMessages))
		d.RecentMessages = msgs
		return content.StoreError("load recent messages", err)
	})
	if err := g.Wait(); err != nil {
		return models.Dashboard{}, err
	}
	return d, nil
}
