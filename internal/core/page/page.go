// Package page は一覧取得で共通のオフセット方式ページングを扱います。
package page

import (
	"strconv"
	"strings"
)

const (
	DefaultSize = 50
	MaxSize     = 200
)

// Size はページサイズを正規化します。0 以下は既定値、上限超過は ok=false です。
func Size(size int) (int, bool) {
	if size <= 0 {
		return DefaultSize, true
	}
	if size > MaxSize {
		return 0, false
	}
	return size, true
}

// Offset はページトークンをオフセットに変換します。空文字列は 0 です。
func Offset(token string) (int, bool) {
	if strings.TrimSpace(token) == "" {
		return 0, true
	}
	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, false
	}
	return offset, true
}

// Trim は limit+1 件まで取得した結果を limit 件に切り詰め、続きがあれば次ページのトークンを返します。
func Trim[T any](items []T, offset, limit int) ([]T, string) {
	if limit <= 0 || len(items) <= limit {
		return items, ""
	}
	return items[:limit], strconv.Itoa(offset + limit)
}
