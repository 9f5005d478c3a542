package admin

import (
	"context"
	"fmt"

	"github.com/Declyn50s/Traine-Savates/pkg/apperr"
	"github.com/Declyn50s/Traine-Savates/pkg/content"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
)

var newestFirst = store.Desc("created_at")

// ListContactMessages returns messages newest first. An empty status lists all.
func (s *Service) ListContactMessages(ctx context.Context, status models.MessageStatus) ([]models.ContactMessage, error) {
	q := store.Query{}.OrderBy(newestFirst)
	if status != "" {
		if !status.Valid() {
			return nil, apperr.Invalid("status", fmt.Sprintf("unknown message status %q", status))
		}
		q.Filters = []store.Filter{store.Eq("status", status)}
	}
	msgs, err := s.t.ContactMessages.List(ctx, q)
	return msgs, content.StoreError("list contact messages", err)
}

func (s *Service) GetContactMessage(ctx context.Context, id string) (models.ContactMessage, error) {
	m, err := s.t.ContactMessages.Get(ctx, id)
	return m, content.StoreError("load contact message "+id, err)
}

func (s *Service) SetContactStatus(ctx context.Context, id string, status models.MessageStatus) (models.ContactMessage, error) {
	if !status.Valid() {
		return models.ContactMessage{}, apperr.Invalid("status", fmt.Sprintf("unknown message status %q", status))
	}
	m, err := s.t.ContactMessages.Update(ctx, id, store.Patch{"status": status})
	return m, content.StoreError("set status of contact message "+id, err)
}

// ListMembershipRequests returns requests newest first. An empty status lists all.
func (s *Service) ListMembershipRequests(ctx context.Context, status models.MembershipStatus) ([]models.MembershipRequest, error) {
	q := store.Query{}.OrderBy(newestFirst)
	if status != "" {
		if !status.Valid() {
			return nil, apperr.Invalid("status", fmt.Sprintf("unknown membership status %q", status))
		}
		q.Filters = []store.Filter{store.Eq("status", status)}
	}
	reqs, err := s.t.MembershipRequests.List(ctx, q)
	return reqs, content.StoreError("list membership requests", err)
}

func (s *Service) GetMembershipRequest(ctx context.Context, id string) (models.MembershipRequest, error) {
	r, err := s.t.MembershipRequests.Get(ctx, id)
	return r, content.StoreError("load membership request "+id, err)
}

func (s *Service) SetMembershipStatus(ctx context.Context, id string, status models.MembershipStatus) (models.MembershipRequest, error) {
	if !status.Valid() {
		return models.MembershipRequest{}, apperr.Invalid("status", fmt.Sprintf("unknown membership status %q", status))
	}
	r, err := s.t.MembershipRequests.Update(ctx, id, store.Patch{"status": status})
	return r, content.StoreError("set status of membership request "+id, err)
}
