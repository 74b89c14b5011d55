package handler

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/client"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/compliance"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/document"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/user"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/worker"
)

var testTime = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

type fakeUsers struct {
	users   map[string]*user.User
	created *user.CreateUserInput
}

func newFakeUsers(users ...*user.User) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*user.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) CreateUser(_ context.Context, in user.CreateUserInput) (*user.User, error) {
	if in.Role == user.RoleClient && in.ClientID == nil {
		return nil, user.ErrClientRequired
	}
	f.created = &in
	return &user.User{ID: "u-new", Email: in.Email, Name: in.Name, Role: in.Role, ClientID: in.ClientID, Status: user.StatusActive}, nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, in user.UpdateUserInput) (*user.User, error) {
	u, ok := f.users[in.ID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Status != nil {
		u.Status = *in.Status
	}
	return u, nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, in user.DeleteUserInput) error {
	if _, ok := f.users[in.ID]; !ok {
		return user.ErrUserNotFound
	}
	delete(f.users, in.ID)
	return nil
}

func (f *fakeUsers) GetUser(_ context.Context, in user.GetUserInput) (*user.User, error) {
	u, ok := f.users[in.ID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) ListUsers(_ context.Context, _ user.ListUsersInput) (*user.ListUsersResult, error) {
	out := make([]*user.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return &user.ListUsersResult{Users: out}, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, in user.AuthenticateInput) (*user.User, error) {
	for _, u := range f.users {
		if u.Email == in.Email && in.Password == "correct-password" {
			return u, nil
		}
	}
	return nil, user.ErrInvalidCredentials
}

type fakeClients struct {
	clients map[string]*client.Client
}

func newFakeClients(clients ...*client.Client) *fakeClients {
	f := &fakeClients{clients: make(map[string]*client.Client)}
	for _, c := range clients {
		f.clients[c.ID] = c
	}
	return f
}

func (f *fakeClients) CreateClient(_ context.Context, in client.CreateClientInput) (*client.Client, error) {
	for _, c := range f.clients {
		if c.RUT == in.RUT {
			return nil, client.ErrRUTAlreadyExists
		}
	}
	c := &client.Client{ID: "c-new", RUT: in.RUT, Name: in.Name, Email: in.Email, Status: client.StatusActive, CreatedAt: testTime, UpdatedAt: testTime}
	f.clients[c.ID] = c
	return c, nil
}

func (f *fakeClients) GetClient(_ context.Context, in client.GetClientInput) (*client.Client, error) {
	c, ok := f.clients[in.ID]
	if !ok {
		return nil, client.ErrClientNotFound
	}
	return c, nil
}

func (f *fakeClients) ListClients(_ context.Context, in client.ListClientsInput) (*client.ListClientsResult, error) {
	if in.PageSize < 0 {
		return nil, client.ErrInvalidPageSize
	}
	out := make([]*client.Client, 0, len(f.clients))
	for _, c := range f.clients {
		out = append(out, c)
	}
	return &client.ListClientsResult{Clients: out}, nil
}

func (f *fakeClients) UpdateClient(_ context.Context, in client.UpdateClientInput) (*client.Client, error) {
	c, ok := f.clients[in.ID]
	if !ok {
		return nil, client.ErrClientNotFound
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	return c, nil
}

func (f *fakeClients) DeleteClient(_ context.Context, in client.DeleteClientInput) error {
	if _, ok := f.clients[in.ID]; !ok {
		return client.ErrClientNotFound
	}
	if in.ID == "c-busy" {
		return client.ErrClientInUse
	}
	delete(f.clients, in.ID)
	return nil
}

type fakeWorkers struct {
	workers map[string]*worker.Worker
	created *worker.CreateWorkerInput
	updated *worker.UpdateWorkerInput
}

func newFakeWorkers(workers ...*worker.Worker) *fakeWorkers {
	f := &fakeWorkers{workers: make(map[string]*worker.Worker)}
	for _, w := range workers {
		f.workers[w.ID] = w
	}
	return f
}

func (f *fakeWorkers) CreateWorker(_ context.Context, in worker.CreateWorkerInput) (*worker.Worker, error) {
	if in.ContractStart != nil && in.ContractEnd != nil && in.ContractEnd.Before(*in.ContractStart) {
		return nil, worker.ErrInvalidContractPeriod
	}
	f.created = &in
	w := &worker.Worker{
		ID: "w-new", ClientID: in.ClientID, RUT: in.RUT, FirstName: in.FirstName, LastName: in.LastName,
		Status: worker.StatusActive, ContractStart: in.ContractStart, ContractEnd: in.ContractEnd,
	}
	f.workers[w.ID] = w
	return w, nil
}

func (f *fakeWorkers) GetWorker(_ context.Context, in worker.GetWorkerInput) (*worker.Worker, error) {
	w, ok := f.workers[in.ID]
	if !ok {
		return nil, worker.ErrWorkerNotFound
	}
	return w, nil
}

func (f *fakeWorkers) ListWorkers(_ context.Context, in worker.ListWorkersInput) (*worker.ListWorkersResult, error) {
	var out []*worker.Worker
	for _, w := range f.workers {
		if w.ClientID == in.ClientID {
			out = append(out, w)
		}
	}
	return &worker.ListWorkersResult{Workers: out}, nil
}

func (f *fakeWorkers) UpdateWorker(_ context.Context, in worker.UpdateWorkerInput) (*worker.Worker, error) {
	w, ok := f.workers[in.ID]
	if !ok {
		return nil, worker.ErrWorkerNotFound
	}
	f.updated = &in
	if in.ContractEndSet {
		w.ContractEnd = in.ContractEnd
	}
	return w, nil
}

func (f *fakeWorkers) DeleteWorker(_ context.Context, in worker.DeleteWorkerInput) error {
	if _, ok := f.workers[in.ID]; !ok {
		return worker.ErrWorkerNotFound
	}
	delete(f.workers, in.ID)
	return nil
}

type fakeDocuments struct {
	docs     map[string]*document.Document
	uploaded *document.UploadInput
	body     []byte
}

func newFakeDocuments(docs ...*document.Document) *fakeDocuments {
	f := &fakeDocuments{docs: make(map[string]*document.Document)}
	for _, d := range docs {
		f.docs[d.ID] = d
	}
	return f
}

func (f *fakeDocuments) Upload(_ context.Context, in document.UploadInput) (*document.Document, error) {
	if !in.Category.Valid() {
		return nil, document.ErrInvalidCategory
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.uploaded = &in
	f.body = body
	d := &document.Document{ID: "d-new", ClientID: in.ClientID, Category: in.Category, Period: in.Period, FileName: in.FileName, Size: in.Size}
	f.docs[d.ID] = d
	return d, nil
}

func (f *fakeDocuments) GetDocument(_ context.Context, in document.GetDocumentInput) (*document.Document, error) {
	d, ok := f.docs[in.ID]
	if !ok {
		return nil, document.ErrDocumentNotFound
	}
	return d, nil
}

func (f *fakeDocuments) ListDocuments(_ context.Context, in document.ListDocumentsInput) (*document.ListDocumentsResult, error) {
	var out []*document.Document
	for _, d := range f.docs {
		if d.ClientID == in.ClientID {
			out = append(out, d)
		}
	}
	return &document.ListDocumentsResult{Documents: out}, nil
}

func (f *fakeDocuments) DownloadURL(ctx context.Context, in document.GetDocumentInput) (string, error) {
	d, err := f.GetDocument(ctx, in)
	if err != nil {
		return "", err
	}
	return "https://storage.local/" + d.ObjectKey, nil
}

func (f *fakeDocuments) DeleteDocument(_ context.Context, in document.GetDocumentInput) error {
	if _, ok := f.docs[in.ID]; !ok {
		return document.ErrDocumentNotFound
	}
	delete(f.docs, in.ID)
	return nil
}

type fakeCompliance struct {
	notifications []compliance.Notification
	at            []time.Time
	err           error
}

func (f *fakeCompliance) Notifications(ctx context.Context) ([]compliance.Notification, error) {
	return f.NotificationsAt(ctx, testTime)
}

func (f *fakeCompliance) NotificationsAt(_ context.Context, now time.Time) ([]compliance.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.at = append(f.at, now)
	return f.notifications, nil
}

func (f *fakeCompliance) Invalidate(context.Context) error {
	return nil
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error {
	return f.err
}

var errDatabaseDown = errors.New("connection refused")
