package repository

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEncodeKPIKinds(t *testing.T) {
	cases := []struct {
		value any
		kind  string
		text  string
	}{
		{42, kpiKindInt, "42"},
		{-18, kpiKindInt, "-18"},
		{96.5, kpiKindFloat, "96.5"},
		{-71.0, kpiKindFloat, "-71"},
		{decimal.RequireFromString("350.30"), kpiKindMoney, "350.3"},
		{"03:00:00", kpiKindDuration, "03:00:00"},
		{int64(7), kpiKindText, "7"},
	}
	for _, tc := range cases {
		kind, text := encodeKPI(tc.value)
		if kind != tc.kind {
			t.Fatalf("expected kind %q for %v, got %q", tc.kind, tc.value, kind)
		}
		if text != tc.text {
			t.Fatalf("expected text %q for %v, got %q", tc.text, tc.value, text)
		}
	}
}

func TestDecodeKPIRoundTrip(t *testing.T) {
	kind, text := encodeKPI(128)
	value, err := decodeKPI(kind, text)
	if err != nil {
		t.Fatalf("decode int: %v", err)
	}
	if got, ok := value.(int); !ok || got != 128 {
		t.Fatalf("expected int 128, got %T %v", value, value)
	}

	kind, text = encodeKPI(-46.88)
	value, err = decodeKPI(kind, text)
	if err != nil {
		t.Fatalf("decode float: %v", err)
	}
	if got, ok := value.(float64); !ok || got != -46.88 {
		t.Fatalf("expected float -46.88, got %T %v", value, value)
	}

	money := decimal.RequireFromString("116.77")
	kind, text = encodeKPI(money)
	value, err = decodeKPI(kind, text)
	if err != nil {
		t.Fatalf("decode money: %v", err)
	}
	if got, ok := value.(decimal.Decimal); !ok || !got.Equal(money) {
		t.Fatalf("expected 116.77, got %T %v", value, value)
	}

	kind, text = encodeKPI("01:30:00")
	value, err = decodeKPI(kind, text)
	if err != nil {
		t.Fatalf("decode duration: %v", err)
	}
	if value != "01:30:00" {
		t.Fatalf("expected 01:30:00, got %v", value)
	}
}

func TestDecodeKPIUnknownKind(t *testing.T) {
	if _, err := decodeKPI("blob", "x"); err == nil {
		t.Fatal("expected error for unrecognized kind")
	}
}
