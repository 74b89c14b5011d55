package rut

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

func TestComputeCheckCharacter_KnownVectors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"12345678": "5",
		"11111111": "1",
		"10000013": "K",
		"1000013":  "0",
		"1234567":  "4",
		"7":        "8",
		"6":        "K",
		"12":       "4",
	}

	for number, want := range cases {
		if got := ComputeCheckCharacter(number); got != want {
			t.Errorf("ComputeCheckCharacter(%q) = %q, want %q", number, got, want)
		}
	}
}

func TestComputeCheckCharacter_RejectsNonDigits(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "12a45", "12.345", "1234567K", " 123"} {
		if got := ComputeCheckCharacter(input); got != "" {
			t.Errorf("ComputeCheckCharacter(%q) = %q, want empty", input, got)
		}
	}
}

func TestComputeCheckCharacter_OutputAlphabet(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 99_999_999; n += 7_919 {
		number := strconv.Itoa(n)
		first := ComputeCheckCharacter(number)
		if first != ComputeCheckCharacter(number) {
			t.Fatalf("non deterministic result for %s", number)
		}
		if len(first) != 1 || !strings.Contains("0123456789K", first) {
			t.Fatalf("unexpected check character %q for %s", first, number)
		}
	}
}

func TestComputeCheckCharacter_WeightRestartsAfterSeven(t *testing.T) {
	t.Parallel()

	// 1 followed by six zeros: weights 2..7 go to the zeros, the leading 1 gets weight 2 again.
	// sum = 2, 11 - 2 = 9.
	if got := ComputeCheckCharacter("1000000"); got != "9" {
		t.Fatalf("expected weight to restart at 2, got %q", got)
	}
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  bool
	}{
		{"12345678-5", true},
		{"12.345.678-5", true},
		{"123456785", true},
		{"12345678-4", false},
		{"10000013-K", true},
		{"10000013-k", true},
		{"10.000.013-k", true},
		{"1000013-0", true},
		{"6-K", true},
		{"6-k", true},
		{"", false},
		{"   ", false},
		{"5", false},
		{"-", false},
		{"1234a678-5", false},
		{"12345678-X", false},
		{"12345678-", false},
		{" 12345678-5", false},
	}

	for _, tc := range cases {
		if got := IsValid(tc.input); got != tc.want {
			t.Errorf("IsValid(%q) = %t, want %t", tc.input, got, tc.want)
		}
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"123456785":    "12.345.678-5",
		"12.345.678-5": "12.345.678-5",
		"10000013k":    "10.000.013-K",
		"1234567-4":    "1.234.567-4",
		"123-4":        "123-4",
		"6k":           "6-K",
		"5":            "5",
		"":             "",
		"-":            "",
		"12345678-4":   "12.345.678-4",
		"ab1234":       "AB.123-4",
	}

	for input, want := range cases {
		if got := Format(input); got != want {
			t.Errorf("Format(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFormat_PreservesValidity(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 99_999_999; n += 104_729 {
		number := strconv.Itoa(n)
		valid := number + ComputeCheckCharacter(number)
		if !IsValid(valid) {
			t.Fatalf("expected %s to be valid", valid)
		}
		if !IsValid(Format(Clean(valid))) {
			t.Fatalf("format broke validity of %s (%s)", valid, Format(valid))
		}
	}
}

func TestClean_Idempotent(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "12.345.678-k", "a-b.c", "--..", "ñandú-1", "12 345"} {
		once := Clean(input)
		if twice := Clean(once); twice != once {
			t.Errorf("Clean not idempotent for %q: %q != %q", input, twice, once)
		}
	}

	if got := Clean("12.345.678-k"); got != "12345678K" {
		t.Fatalf("unexpected clean result %q", got)
	}
}

func TestExtractParts(t *testing.T) {
	t.Parallel()

	if got := ExtractNumber("12.345.678-5"); got != "12345678" {
		t.Errorf("ExtractNumber = %q", got)
	}
	if got := ExtractCheckCharacter("12.345.678-k"); got != "K" {
		t.Errorf("ExtractCheckCharacter = %q", got)
	}
	if ExtractNumber("") != "" || ExtractCheckCharacter("") != "" {
		t.Errorf("expected empty parts for empty input")
	}
	if ExtractNumber("5") != "" || ExtractCheckCharacter("5") != "5" {
		t.Errorf("unexpected parts for single character input")
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	got, err := Normalize("10.000.013-k")
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if got != "10000013K" {
		t.Fatalf("unexpected normalized value %q", got)
	}

	if _, err := Normalize("12.345.678-4"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
