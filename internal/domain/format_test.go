package domain_test

import (
	"testing"

	"blockvault/internal/domain"
)

func TestFormatSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 Bytes"},
		{-5, "0 Bytes"},
		{1, "1 Bytes"},
		{512, "512 Bytes"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}
	for _, c := range cases {
		if got := domain.FormatSize(c.in); got != c.want {
			t.Errorf("FormatSize(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := domain.FormatTimestamp(0); got != "-" {
		t.Errorf("FormatTimestamp(0) = %q, want -", got)
	}
	if got := domain.FormatTimestamp(1700000000000); got != "2023-11-14 22:13:20" {
		t.Errorf("FormatTimestamp = %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	if got := (domain.File{}).DisplayName(); got != "Unknown File" {
		t.Errorf("empty name = %q", got)
	}
	if got := (domain.File{Name: "a.txt"}).DisplayName(); got != "a.txt" {
		t.Errorf("name = %q", got)
	}
}

func TestShareExpired(t *testing.T) {
	s := domain.Share{ExpiresAt: 1000}
	if s.Expired(999) {
		t.Error("not yet expired")
	}
	if !s.Expired(1001) {
		t.Error("should be expired")
	}
	if (domain.Share{}).Expired(1 << 60) {
		t.Error("zero expiry never expires")
	}
}

func TestAddressEqual(t *testing.T) {
	a := domain.Address("0xAbC0000000000000000000000000000000000001")
	b := domain.Address("0xabc0000000000000000000000000000000000001")
	if !a.Equal(b) {
		t.Error("addresses should compare case-insensitively")
	}
}
