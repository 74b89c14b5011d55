// Package rut はチリの納税者番号 (RUT) の検証と整形を提供します。
//
// RUT は数字部と末尾 1 文字の検証文字 (0-9 または K) から構成されます。
// 関数はすべて副作用を持たず、不正な入力に対してはエラーではなく
// false や未加工の値を返します。
package rut

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrInvalid は RUT が検証に失敗した場合に返却されます。
var ErrInvalid = errors.New("rut: invalid")

const (
	minWeight = 2
	maxWeight = 7
	modulus   = 11
)

// Clean は区切り文字 '.' と '-' を取り除き、大文字に変換します。
func Clean(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r == '.' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// ComputeCheckCharacter は数字部から検証文字を算出します。
// 数字以外を含む場合、または空文字列の場合は "" を返します。
func ComputeCheckCharacter(numberDigits string) string {
	if numberDigits == "" {
		return ""
	}

	sum := 0
	weight := minWeight
	for i := len(numberDigits) - 1; i >= 0; i-- {
		c := numberDigits[i]
		if c < '0' || c > '9' {
			return ""
		}
		sum += int(c-'0') * weight
		if weight == maxWeight {
			weight = minWeight
		} else {
			weight++
		}
	}

	switch value := modulus - sum%modulus; value {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return string(rune('0' + value))
	}
}

// IsValid は入力が正しい RUT かどうかを判定します。panic やエラーは発生しません。
func IsValid(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}

	cleaned := Clean(input)
	if utf8.RuneCountInString(cleaned) < 2 {
		return false
	}

	number := ExtractNumber(cleaned)
	check := ExtractCheckCharacter(cleaned)
	if !isDigits(number) {
		return false
	}
	if !isCheckCharacter(check) {
		return false
	}

	return ComputeCheckCharacter(number) == check
}

// Format は RUT を "12.345.678-5" 形式に整形します。検証は行いません。
func Format(input string) string {
	cleaned := Clean(input)
	if utf8.RuneCountInString(cleaned) < 2 {
		return cleaned
	}

	number := ExtractNumber(cleaned)
	check := ExtractCheckCharacter(cleaned)
	return groupThousands(number) + "-" + check
}

// ExtractNumber は検証文字を除いた数字部を返します。
func ExtractNumber(input string) string {
	runes := []rune(Clean(input))
	if len(runes) == 0 {
		return ""
	}
	return string(runes[:len(runes)-1])
}

// ExtractCheckCharacter は末尾の検証文字を返します。
func ExtractCheckCharacter(input string) string {
	runes := []rune(Clean(input))
	if len(runes) == 0 {
		return ""
	}
	return string(runes[len(runes)-1:])
}

// Normalize は RUT を検証し、保存用の正規化済み表現を返します。
func Normalize(input string) (string, error) {
	if !IsValid(input) {
		return "", ErrInvalid
	}
	return Clean(input), nil
}

func groupThousands(number string) string {
	runes := []rune(number)
	if len(runes) <= 3 {
		return number
	}

	var b strings.Builder
	b.Grow(len(number) + len(runes)/3)
	lead := len(runes) % 3
	if lead > 0 {
		b.WriteString(string(runes[:lead]))
	}
	for i := lead; i < len(runes); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(string(runes[i : i+3]))
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isCheckCharacter(s string) bool {
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return (c >= '0' && c <= '9') || c == 'K'
}
