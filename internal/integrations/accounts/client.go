// Package accounts is the boundary to the surrounding application, which
// owns customer and account data. The dialogue engine reads one snapshot
// per session start and never refreshes it.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dialogue-agent/internal/domain"
)

// snapshotAPI is the minimal interface the embedding application has to
// implement. Defined here for testability.
type snapshotAPI interface {
	FetchAccountSnapshot(ctx context.Context, clientID string) (domain.AccountSnapshot, error)
}

// Provider is the interface the dialogue service consumes. Consumers
// should depend on it rather than the concrete *Client so they remain
// testable without the host application.
type Provider interface {
	LoadAccountSnapshot(ctx context.Context, clientID string) (domain.AccountSnapshot, error)
}

// Client wraps the host application's account facade with validation.
type Client struct {
	api snapshotAPI
}

// New creates a Client with the given snapshot API implementation.
func New(api snapshotAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("accounts: api must not be nil")
	}
	return &Client{api: api}, nil
}

// LoadAccountSnapshot fetches and validates the account facts for a client.
func (c *Client) LoadAccountSnapshot(ctx context.Context, clientID string) (domain.AccountSnapshot, error) {
	if c.api == nil {
		return domain.AccountSnapshot{}, errors.New("accounts: client not initialized")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return domain.AccountSnapshot{}, errors.New("accounts: client id is required")
	}

	snap, err := c.api.FetchAccountSnapshot(ctx, clientID)
	if err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("accounts: fetch snapshot for %q: %w", clientID, err)
	}
	if snap.PendingInvoiceCount < 0 || snap.OverdueInvoiceCount < 0 || snap.OperationsThisMonth < 0 {
		return domain.AccountSnapshot{}, fmt.Errorf("accounts: snapshot for %q has negative counters", clientID)
	}
	if snap.AverageDeliveryDays < 0 {
		return domain.AccountSnapshot{}, fmt.Errorf("accounts: snapshot for %q has negative delivery average", clientID)
	}
	return snap, nil
}

// StaticProvider serves fixture snapshots. The demo CLI and tests use it
// in place of the real host application.
type StaticProvider struct {
	Snapshots map[string]domain.AccountSnapshot
}

// LoadAccountSnapshot returns the fixture for the client, or an error when
// none is registered.
func (p *StaticProvider) LoadAccountSnapshot(_ context.Context, clientID string) (domain.AccountSnapshot, error) {
	snap, ok := p.Snapshots[clientID]
	if !ok {
		return domain.AccountSnapshot{}, fmt.Errorf("accounts: no snapshot registered for %q", clientID)
	}
	return snap, nil
}
