package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/page"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeRepo struct {
	clients map[string]*Client
	order   []string
	seq     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{clients: make(map[string]*Client)}
}

func (r *fakeRepo) Create(_ context.Context, c *Client) (*Client, error) {
	for _, existing := range r.clients {
		if existing.RUT == c.RUT {
			return nil, ErrRUTAlreadyExists
		}
	}
	clone := cloneClient(c)
	r.seq++
	clone.ID = fmt.Sprintf("client-%d", r.seq)
	r.clients[clone.ID] = clone
	r.order = append(r.order, clone.ID)
	return cloneClient(clone), nil
}

func (r *fakeRepo) Update(_ context.Context, c *Client) (*Client, error) {
	if _, ok := r.clients[c.ID]; !ok {
		return nil, ErrClientNotFound
	}
	r.clients[c.ID] = cloneClient(c)
	return cloneClient(c), nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.clients[id]; !ok {
		return ErrClientNotFound
	}
	delete(r.clients, id)
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, ErrClientNotFound
	}
	return cloneClient(c), nil
}

func (r *fakeRepo) FindByRUT(_ context.Context, value string) (*Client, error) {
	for _, c := range r.clients {
		if c.RUT == value {
			return cloneClient(c), nil
		}
	}
	return nil, ErrClientNotFound
}

func (r *fakeRepo) List(_ context.Context, filter ListClientsFilter) ([]*Client, string, error) {
	var filtered []*Client
	for _, id := range r.order {
		c, ok := r.clients[id]
		if !ok {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		filtered = append(filtered, cloneClient(c))
	}
	if filter.Offset > len(filtered) {
		return []*Client{}, "", nil
	}
	end := filter.Offset + filter.Limit + 1
	if end > len(filtered) {
		end = len(filtered)
	}
	items, next := page.Trim(filtered[filter.Offset:end], filter.Offset, filter.Limit)
	return items, next, nil
}

func cloneClient(c *Client) *Client {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Email != nil {
		email := *c.Email
		clone.Email = &email
	}
	return &clone
}

func TestService_CreateClient_Success(t *testing.T) {
	t.Parallel()

	email := "  Contacto@Panaderia.CL "
	clk := &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(newFakeRepo(), clk, nil)

	created, err := svc.CreateClient(context.Background(), CreateClientInput{
		RUT:   "12.345.678-5",
		Name:  "  Panadería Sur SpA ",
		Email: &email,
	})
	if err != nil {
		t.Fatalf("CreateClient returned error: %v", err)
	}

	if created.RUT != "123456785" {
		t.Fatalf("expected normalized rut, got %q", created.RUT)
	}
	if created.DisplayRUT() != "12.345.678-5" {
		t.Fatalf("unexpected display rut %q", created.DisplayRUT())
	}
	if created.Name != "Panadería Sur SpA" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if created.Email == nil || *created.Email != "contacto@panaderia.cl" {
		t.Fatalf("expected normalized email, got %+v", created.Email)
	}
	if created.Status != StatusActive {
		t.Fatalf("expected active status, got %s", created.Status)
	}
	if !created.CreatedAt.Equal(clk.now) || !created.UpdatedAt.Equal(clk.now) {
		t.Fatalf("expected timestamps from clock")
	}
}

func TestService_CreateClient_InvalidRUT(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)

	for _, value := range []string{"", "12.345.678-4", "abc"} {
		if _, err := svc.CreateClient(context.Background(), CreateClientInput{RUT: value, Name: "X"}); !errors.Is(err, ErrInvalidRUT) {
			t.Errorf("rut %q: expected ErrInvalidRUT, got %v", value, err)
		}
	}
}

func TestService_CreateClient_InvalidEmail(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)
	email := "not-an-email"

	if _, err := svc.CreateClient(context.Background(), CreateClientInput{RUT: "11111111-1", Name: "X", Email: &email}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestService_CreateClient_DuplicateRUT(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)

	if _, err := svc.CreateClient(context.Background(), CreateClientInput{RUT: "10000013-K", Name: "First"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CreateClient(context.Background(), CreateClientInput{RUT: "10.000.013-k", Name: "Second"}); !errors.Is(err, ErrRUTAlreadyExists) {
		t.Fatalf("expected ErrRUTAlreadyExists, got %v", err)
	}
}

func TestService_UpdateClient_Success(t *testing.T) {
	t.Parallel()

	clk := &stubClock{now: time.Now()}
	svc := NewService(newFakeRepo(), clk, nil)

	created, err := svc.CreateClient(context.Background(), CreateClientInput{RUT: "11111111-1", Name: "Old"})
	if err != nil {
		t.Fatalf("CreateClient error: %v", err)
	}

	name := "New"
	newRUT := "1.000.013-0"
	inactive := StatusInactive
	clk.now = clk.now.Add(time.Hour)

	updated, err := svc.UpdateClient(context.Background(), UpdateClientInput{
		ID:     created.ID,
		RUT:    &newRUT,
		Name:   &name,
		Status: &inactive,
	})
	if err != nil {
		t.Fatalf("UpdateClient returned error: %v", err)
	}

	if updated.Name != name || updated.RUT != "10000130" || updated.Status != StatusInactive {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if !updated.UpdatedAt.Equal(clk.now) {
		t.Fatalf("expected updated timestamp to match clock")
	}
}

func TestService_UpdateClient_ClearsEmail(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)
	email := "a@b.cl"
	created, err := svc.CreateClient(context.Background(), CreateClientInput{RUT: "11111111-1", Name: "X", Email: &email})
	if err != nil {
		t.Fatalf("CreateClient error: %v", err)
	}

	empty := " "
	updated, err := svc.UpdateClient(context.Background(), UpdateClientInput{ID: created.ID, Email: &empty})
	if err != nil {
		t.Fatalf("UpdateClient returned error: %v", err)
	}
	if updated.Email != nil {
		t.Fatalf("expected email cleared, got %v", *updated.Email)
	}
}

func TestService_UpdateClient_DuplicateRUT(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)

	first, err := svc.CreateClient(context.Background(), CreateClientInput{RUT: "11111111-1", Name: "First"})
	if err != nil {
		t.Fatalf("CreateClient error: %v", err)
	}
	second, err := svc.CreateClient(context.Background(), CreateClientInput{RUT: "12345678-5", Name: "Second"})
	if err != nil {
		t.Fatalf("CreateClient error: %v", err)
	}

	dup := first.DisplayRUT()
	if _, err := svc.UpdateClient(context.Background(), UpdateClientInput{ID: second.ID, RUT: &dup}); !errors.Is(err, ErrRUTAlreadyExists) {
		t.Fatalf("expected ErrRUTAlreadyExists, got %v", err)
	}
}

func TestService_UpdateClient_InvalidStatus(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)
	created, err := svc.CreateClient(context.Background(), CreateClientInput{RUT: "11111111-1", Name: "X"})
	if err != nil {
		t.Fatalf("CreateClient error: %v", err)
	}

	status := Status("archived")
	if _, err := svc.UpdateClient(context.Background(), UpdateClientInput{ID: created.ID, Status: &status}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestService_GetAndDeleteClient(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)
	created, err := svc.CreateClient(context.Background(), CreateClientInput{RUT: "11111111-1", Name: "X"})
	if err != nil {
		t.Fatalf("CreateClient error: %v", err)
	}

	found, err := svc.GetClient(context.Background(), GetClientInput{ID: created.ID})
	if err != nil || found.ID != created.ID {
		t.Fatalf("GetClient returned %+v, %v", found, err)
	}

	if err := svc.DeleteClient(context.Background(), DeleteClientInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteClient returned error: %v", err)
	}
	if _, err := svc.GetClient(context.Background(), GetClientInput{ID: created.ID}); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestService_InvalidID(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)

	if _, err := svc.GetClient(context.Background(), GetClientInput{ID: "  "}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID from GetClient, got %v", err)
	}
	if err := svc.DeleteClient(context.Background(), DeleteClientInput{}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID from DeleteClient, got %v", err)
	}
	if _, err := svc.UpdateClient(context.Background(), UpdateClientInput{}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID from UpdateClient, got %v", err)
	}
}

func TestService_ListClients_Pagination(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)
	for _, value := range []string{"11111111-1", "12345678-5", "10000013-K"} {
		if _, err := svc.CreateClient(context.Background(), CreateClientInput{RUT: value, Name: value}); err != nil {
			t.Fatalf("CreateClient error: %v", err)
		}
	}

	result, err := svc.ListClients(context.Background(), ListClientsInput{PageSize: 2})
	if err != nil {
		t.Fatalf("ListClients returned error: %v", err)
	}
	if len(result.Clients) != 2 || result.NextPageToken != "2" {
		t.Fatalf("expected 2 clients and token 2, got %d %q", len(result.Clients), result.NextPageToken)
	}

	rest, err := svc.ListClients(context.Background(), ListClientsInput{PageSize: 2, PageToken: result.NextPageToken})
	if err != nil {
		t.Fatalf("ListClients returned error: %v", err)
	}
	if len(rest.Clients) != 1 || rest.NextPageToken != "" {
		t.Fatalf("expected final page with 1 client, got %d %q", len(rest.Clients), rest.NextPageToken)
	}
}

func TestService_ListClients_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)

	if _, err := svc.ListClients(context.Background(), ListClientsInput{PageSize: page.MaxSize + 1}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if _, err := svc.ListClients(context.Background(), ListClientsInput{PageToken: "abc"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
	status := Status("unknown")
	if _, err := svc.ListClients(context.Background(), ListClientsInput{Status: &status}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

type countingInvalidator struct {
	calls int
	err   error
}

func (i *countingInvalidator) Invalidate(context.Context) error {
	i.calls++
	return i.err
}

func TestService_MutationsInvalidateNotifications(t *testing.T) {
	t.Parallel()

	inv := &countingInvalidator{}
	svc := NewService(newFakeRepo(), nil, nil, WithNotificationInvalidator(inv))
	ctx := context.Background()

	created, err := svc.CreateClient(ctx, CreateClientInput{RUT: "11111111-1", Name: "Sur"})
	if err != nil {
		t.Fatalf("CreateClient error: %v", err)
	}
	if inv.calls != 0 {
		t.Fatalf("a new client has no contracts, expected no invalidation, got %d", inv.calls)
	}

	// 顧客名は契約通知の本文に含まれる。
	name := "Sur Ltda"
	if _, err := svc.UpdateClient(ctx, UpdateClientInput{ID: created.ID, Name: &name}); err != nil {
		t.Fatalf("UpdateClient error: %v", err)
	}
	if inv.calls != 1 {
		t.Fatalf("expected invalidation after update, got %d", inv.calls)
	}

	invalid := Status("archived")
	if _, err := svc.UpdateClient(ctx, UpdateClientInput{ID: created.ID, Status: &invalid}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if inv.calls != 1 {
		t.Fatalf("a rejected update must not invalidate, got %d", inv.calls)
	}

	if err := svc.DeleteClient(ctx, DeleteClientInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteClient error: %v", err)
	}
	if inv.calls != 2 {
		t.Fatalf("expected invalidation after delete, got %d", inv.calls)
	}
}

func TestService_InvalidationFailureIsLogged(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	inv := &countingInvalidator{err: errors.New("redis down")}
	svc := NewService(newFakeRepo(), nil, nil, WithNotificationInvalidator(inv), WithLogger(zap.New(core)))

	created, err := svc.CreateClient(context.Background(), CreateClientInput{RUT: "11111111-1", Name: "Sur"})
	if err != nil {
		t.Fatalf("CreateClient error: %v", err)
	}
	name := "Norte"
	updated, err := svc.UpdateClient(context.Background(), UpdateClientInput{ID: created.ID, Name: &name})
	if err != nil {
		t.Fatalf("expected update to succeed despite cache failure, got %v", err)
	}
	if updated.Name != "Norte" {
		t.Fatalf("unexpected name %q", updated.Name)
	}
	if logs.FilterMessage("failed to invalidate notifications").Len() != 1 {
		t.Fatalf("expected a warning for the failed invalidation")
	}
}
