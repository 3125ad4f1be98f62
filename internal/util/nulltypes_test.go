// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"testing"
)

func TestNullStringFromValue(t *testing.T) {
	if ns := NullStringFromValue("x"); !ns.Valid || ns.String != "x" {
		t.Errorf("NullStringFromValue(\"x\") = %+v, want valid \"x\"", ns)
	}
	if ns := NullStringFromValue(""); ns.Valid {
		t.Errorf("NullStringFromValue(\"\") = %+v, want invalid", ns)
	}
}

func TestNullStringFromPtr(t *testing.T) {
	s := ""
	if ns := NullStringFromPtr(&s); !ns.Valid {
		t.Errorf("NullStringFromPtr(&\"\") = %+v, want valid empty string", ns)
	}
	if ns := NullStringFromPtr(nil); ns.Valid {
		t.Errorf("NullStringFromPtr(nil) = %+v, want invalid", ns)
	}
}

func TestNullInt64FromPtr(t *testing.T) {
	v := int64(7)
	if ni := NullInt64FromPtr(&v); !ni.Valid || ni.Int64 != 7 {
		t.Errorf("NullInt64FromPtr(&7) = %+v, want valid 7", ni)
	}
	if ni := NullInt64FromPtr(nil); ni.Valid {
		t.Errorf("NullInt64FromPtr(nil) = %+v, want invalid", ni)
	}
}

func TestPtrFromNull(t *testing.T) {
	if p := PtrFromNullString(sql.NullString{String: "x", Valid: true}); p == nil || *p != "x" {
		t.Errorf("PtrFromNullString(valid) = %v, want pointer to \"x\"", p)
	}
	if p := PtrFromNullString(sql.NullString{}); p != nil {
		t.Errorf("PtrFromNullString(invalid) = %v, want nil", p)
	}
	if p := PtrFromNullInt64(sql.NullInt64{Int64: 7, Valid: true}); p == nil || *p != 7 {
		t.Errorf("PtrFromNullInt64(valid) = %v, want pointer to 7", p)
	}
	if p := PtrFromNullInt64(sql.NullInt64{}); p != nil {
		t.Errorf("PtrFromNullInt64(invalid) = %v, want nil", p)
	}
}

func TestStringFromNull(t *testing.T) {
	if got := StringFromNull(sql.NullString{String: "x", Valid: true}); got != "x" {
		t.Errorf("StringFromNull(valid) = %q, want \"x\"", got)
	}
	if got := StringFromNull(sql.NullString{String: "x", Valid: false}); got != "" {
		t.Errorf("StringFromNull(invalid) = %q, want \"\"", got)
	}
}
