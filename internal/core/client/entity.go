package client

import (
	"time"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/rut"
)

// Status は顧客企業の状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Client は会計事務所が担当する顧客企業です。RUT は区切り文字を除いた形で保持します。
type Client struct {
	ID        string
	RUT       string
	Name      string
	Email     *string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayRUT は表示用に整形した RUT を返します。
func (c *Client) DisplayRUT() string {
	return rut.Format(c.RUT)
}
