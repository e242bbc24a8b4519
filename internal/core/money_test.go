package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},
		{"1.005", 101, true}, // half away from zero
		{"-1.005", -101, true},
		{" 25.50 ", 2550, true},
		{"-18.75", -1875, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"1e20", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%q expected validation error, got %v", tc.in, err)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:     "0.00",
		4425:  "44.25",
		-1875: "-18.75",
		5:     "0.05",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Fatalf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":"25,50","b":18.75}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A.Cents != 2550 || v.B.Cents != 1875 {
		t.Fatalf("unexpected values: %+v", v)
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":"25.50","b":"18.75"}` {
		t.Fatalf("unexpected json: %s", out)
	}

	if err := json.Unmarshal([]byte(`{"a":"x"}`), &v); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestMoneyAdd(t *testing.T) {
	const maxCents = int64(^uint64(0) >> 1)
	cases := []struct {
		a, b     int64
		want     int64
		overflow bool
	}{
		{4425, -1875, 2550, false},
		{maxCents - 1, 1, maxCents, false},
		{maxCents, 1, 0, true},
		{-maxCents - 1, -1, 0, true},
		{-maxCents, maxCents, 0, false},
	}
	for _, tc := range cases {
		got, err := Money{Cents: tc.a}.Add(Money{Cents: tc.b})
		if tc.overflow {
			if !errors.Is(err, ErrAmountOverflow) {
				t.Fatalf("%d + %d: expected overflow, got %v", tc.a, tc.b, err)
			}
			continue
		}
		if err != nil || got.Cents != tc.want {
			t.Fatalf("%d + %d = %d, %v; want %d", tc.a, tc.b, got.Cents, err, tc.want)
		}
	}
}
