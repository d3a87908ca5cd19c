package inventory

import "testing"

func TestCanonicalResolvesAliases(t *testing.T) {
	n := NewNormalizer(nil)
	cases := map[string]string{
		"o365":     "Microsoft 365",
		"O365":     "Microsoft 365",
		" gsuite ": "Google Workspace",
		"sfdc":     "Salesforce",
	}
	for raw, want := range cases {
		if got := n.Canonical(raw); got != want {
			t.Fatalf("Canonical(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestCanonicalKeepsUnknownNames(t *testing.T) {
	n := NewNormalizer(nil)
	if got := n.Canonical("Redtail CRM"); got != "Redtail CRM" {
		t.Fatalf("expected unknown name untouched, got %q", got)
	}
}

func TestCanonicalPrefersConfigOverrides(t *testing.T) {
	n := NewNormalizer(map[string]string{"o365": "Office Suite", "redtail": "Redtail"})
	if got := n.Canonical("o365"); got != "Office Suite" {
		t.Fatalf("expected override to win, got %q", got)
	}
	if got := n.Canonical("redtail"); got != "Redtail" {
		t.Fatalf("expected added alias, got %q", got)
	}
}

func TestCanonicalMatchesCaseInsensitively(t *testing.T) {
	n := NewNormalizer(nil)
	if got := n.Canonical("microsoft 365"); got != "Microsoft 365" {
		t.Fatalf("expected case-insensitive canonical match, got %q", got)
	}
}
