package redact_test

import (
	"strings"
	"testing"

	"blockvault/internal/redact"
)

func TestScan_SSN(t *testing.T) {
	ms := redact.Scan("SSN on file: 123-45-6789.")
	if len(ms) != 1 || ms[0].Type != redact.TypeSSN {
		t.Fatalf("matches = %+v", ms)
	}
	if ms[0].Text != "123-45-6789" {
		t.Errorf("text = %q", ms[0].Text)
	}
}

func TestScan_Email(t *testing.T) {
	ms := redact.Scan("contact alice.smith+legal@example.co for details")
	if len(ms) != 1 || ms[0].Type != redact.TypeEmail {
		t.Fatalf("matches = %+v", ms)
	}
}

func TestScan_Phone(t *testing.T) {
	for _, in := range []string{"(415) 555-2671", "415-555-2671", "+1 415.555.2671"} {
		ms := redact.Scan("call " + in + " today")
		if len(ms) != 1 || ms[0].Type != redact.TypePhone {
			t.Fatalf("%q: matches = %+v", in, ms)
		}
	}
}

func TestScan_CreditCard_LuhnGate(t *testing.T) {
	// 4111111111111111 passes Luhn; 4111111111111112 does not.
	ms := redact.Scan("card 4111 1111 1111 1111 expires soon")
	if len(ms) != 1 || ms[0].Type != redact.TypeCreditCard {
		t.Fatalf("valid card: matches = %+v", ms)
	}
	for _, m := range redact.Scan("ref 4111111111111112") {
		if m.Type == redact.TypeCreditCard {
			t.Fatal("Luhn-failing number must not match as a card")
		}
	}
}

func TestScan_AddressAndZIP(t *testing.T) {
	ms := redact.Scan("Serve at 742 Evergreen Terrace Ave, Springfield 49007.")
	var kinds []string
	for _, m := range ms {
		kinds = append(kinds, m.Type)
	}
	joined := strings.Join(kinds, ",")
	if !strings.Contains(joined, redact.TypeAddress) || !strings.Contains(joined, redact.TypeZIP) {
		t.Fatalf("kinds = %v", kinds)
	}
}

func TestScan_OverlapResolution(t *testing.T) {
	// The tail of an unspaced card number also matches the phone
	// pattern; the earlier card span must win and no overlapping span
	// may remain.
	ms := redact.Scan("ref 4111111111111111 end")
	if len(ms) != 1 || ms[0].Type != redact.TypeCreditCard {
		t.Fatalf("matches = %+v", ms)
	}
	for i := 1; i < len(ms); i++ {
		if ms[i].Start < ms[i-1].End {
			t.Fatal("overlapping spans in result")
		}
	}
}

func TestApply(t *testing.T) {
	res := redact.Apply("Email bob@example.com or call 415-555-2671.")
	if len(res.Matches) != 2 {
		t.Fatalf("matches = %+v", res.Matches)
	}
	want := "Email [REDACTED:EMAIL] or call [REDACTED:PHONE]."
	if res.Redacted != want {
		t.Errorf("redacted = %q, want %q", res.Redacted, want)
	}
}

func TestApply_NoPII(t *testing.T) {
	const in = "nothing sensitive here"
	res := redact.Apply(in)
	if res.Redacted != in || len(res.Matches) != 0 {
		t.Fatalf("result = %+v", res)
	}
}
