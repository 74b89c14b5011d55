package worker

import "context"

// Repository は従業員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, worker *Worker) (*Worker, error)
	Update(ctx context.Context, worker *Worker) (*Worker, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Worker, error)
	FindByClientAndRUT(ctx context.Context, clientID, rut string) (*Worker, error)
	List(ctx context.Context, filter ListWorkersFilter) ([]*Worker, string, error)
}

// ListWorkersFilter は一覧取得用フィルタです。
type ListWorkersFilter struct {
	ClientID string
	Status   *Status
	Limit    int
	Offset   int
}
