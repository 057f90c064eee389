package client

import (
	"context"
	"sync"

	"github.com/aanand-mishra/lamp-api/internal/types"
)

// Review is the admin list view. After every change it re-fetches the list,
// so Items is always what the server last returned.
type Review struct {
	client *Client

	mu    sync.RWMutex
	items []types.Registration
}

// NewReview returns an empty view. Call Refresh to load it.
func NewReview(c *Client) *Review {
	return &Review{client: c}
}

// Items returns a copy of the last fetched list.
func (r *Review) Items() []types.Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Registration, len(r.items))
	copy(out, r.items)
	return out
}

// Refresh replaces the view with the server's current list. On error the
// previous list is kept.
func (r *Review) Refresh(ctx context.Context) error {
	regs, err := r.client.List(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.items = regs
	r.mu.Unlock()
	return nil
}

// SetStatus approves, rejects or resets registration id and reloads.
func (r *Review) SetStatus(ctx context.Context, id string, status types.Status) error {
	if _, err := r.client.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	return r.Refresh(ctx)
}

// Remove deletes registration id and reloads.
func (r *Review) Remove(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, id); err != nil {
		return err
	}
	return r.Refresh(ctx)
}
