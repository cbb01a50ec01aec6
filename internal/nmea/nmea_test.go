// Copyright 2026 Tibor Dome
// SPDX-License-Identifier: BSD-3-Clause

package nmea

import (
	"testing"
)

// Test sentence checksumming
func TestChecksum(t *testing.T) {
	tables := []struct {
		in       string
		expected string
	}{
		{"GPGLL,0000.00000,N,00000.00000,E,070254.000,V,N", "45"},
		{"GNGSA,A,1,,,,,,,,,,,,,99.0,99.0,99.0", "1E"},
		{"PSTMDUMPEPHEMS,", "3C"},
	}

	for _, table := range tables {
		out := checksum(table.in)
		if out != table.expected {
			t.Errorf("%q expected: %q, got: %q", table.in, table.expected, out)
		}
	}
}

// Test sentence stringer
func TestStringer(t *testing.T) {
	tables := []struct {
		inType   string
		inData   []string
		expected string
	}{
		{"PSTMGPSSUSPEND", []string{}, "$PSTMGPSSUSPEND,*38"},
		{"GPGGA", []string{"070319.000", "0000.00000", "N", "00000.00000", "E", "0", "00", "99.0", "100.00", "M", "0.0", "M", "", ""}, "$GPGGA,070319.000,0000.00000,N,00000.00000,E,0,00,99.0,100.00,M,0.0,M,,*60"},
	}

	for _, table := range tables {
		s := Sentence{
			Type: table.inType,
			Data: table.inData,
		}
		out := s.String()
		if out != table.expected {
			t.Errorf("%q, %q expected: %q, got: %q", table.inType, table.inData, table.expected, out)
		}
	}
}

func TestParse(t *testing.T) {
	s, err := Parse([]byte("$GPGLL,0000.00000,N,00000.00000,E,070254.000,V,N*45"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Type != "GPGLL" {
		t.Errorf("type expected: GPGLL, got: %q", s.Type)
	}
	if len(s.Data) != 7 || s.Data[0] != "0000.00000" || s.Data[6] != "N" {
		t.Errorf("unexpected data fields: %q", s.Data)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	tables := []struct {
		name string
		in   string
	}{
		{"bad checksum", "$GPGLL,0000.00000,N,00000.00000,E,070254.000,V,N*00"},
		{"no checksum", "$GPGLL,0000.00000,N"},
		{"no leading dollar", "GPGLL,0000.00000,N*45"},
		{"empty", ""},
	}

	for _, table := range tables {
		if _, err := Parse([]byte(table.in)); err == nil {
			t.Errorf("%s: expected error for %q", table.name, table.in)
		}
	}
}
