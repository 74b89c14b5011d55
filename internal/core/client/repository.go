package client

import "context"

// Repository は顧客エンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, client *Client) (*Client, error)
	Update(ctx context.Context, client *Client) (*Client, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Client, error)
	FindByRUT(ctx context.Context, rut string) (*Client, error)
	List(ctx context.Context, filter ListClientsFilter) ([]*Client, string, error)
}

// ListClientsFilter は一覧取得時の検索条件を表します。
type ListClientsFilter struct {
	Limit  int
	Offset int
	Status *Status
}
