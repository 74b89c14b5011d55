package document

import "time"

// Category は書類の分類です。
type Category string

const (
	CategoryF29      Category = "f29"
	CategoryF22      Category = "f22"
	CategoryContract Category = "contract"
	CategoryPayroll  Category = "payroll"
	CategoryOther    Category = "other"
)

// Valid は既知の分類かどうかを返します。
func (c Category) Valid() bool {
	switch c {
	case CategoryF29, CategoryF22, CategoryContract, CategoryPayroll, CategoryOther:
		return true
	default:
		return false
	}
}

// Document はオブジェクトストレージに保存された顧客書類のメタデータです。
// Period は対象期間 ("YYYY-MM") で、期間を持たない書類では nil です。
type Document struct {
	ID          string
	ClientID    string
	Category    Category
	Period      *string
	FileName    string
	ObjectKey   string
	ContentType string
	Size        int64
	CreatedAt   time.Time
}
