package geo

import "testing"

func TestLookup_ExactCanonicalMatch(t *testing.T) {
	got := Lookup("Mecca")
	if len(got) != 1 || got[0].CanonicalName != "Mecca" {
		t.Fatalf("expected exactly one exact match for Mecca, got %+v", got)
	}
}

func TestLookup_ExactAliasMatch(t *testing.T) {
	got := Lookup("Tromsø")
	if len(got) != 1 || got[0].CanonicalName != "Tromso" {
		t.Fatalf("expected the diacritic alias to resolve to Tromso, got %+v", got)
	}
}

func TestLookup_CaseAndWhitespaceInsensitive(t *testing.T) {
	got := Lookup("  TROMSO  ")
	if len(got) != 1 || got[0].CanonicalName != "Tromso" {
		t.Fatalf("expected case/whitespace-insensitive match, got %+v", got)
	}
}

func TestLookup_SubstringFallback(t *testing.T) {
	got := Lookup("medin")
	found := false
	for _, r := range got {
		if r.CanonicalName == "Medina" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected substring match to surface Medina, got %+v", got)
	}
}

func TestLookup_NoMatchReturnsEmpty(t *testing.T) {
	got := Lookup("not-a-real-city-xyz")
	if len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}

func TestLookup_ExactTakesPriorityOverPartial(t *testing.T) {
	// "Doha" is an exact match; nothing else should substring-contain it
	// and leak into the result.
	got := Lookup("Doha")
	for _, r := range got {
		if r.CanonicalName != "Doha" {
			t.Errorf("expected only the exact match, also got %s", r.CanonicalName)
		}
	}
}

func TestList_ReturnsFullDatasetWithAliases(t *testing.T) {
	all := List()
	if len(all) < 30 {
		t.Errorf("expected at least 30 records, got %d", len(all))
	}
	for _, r := range all {
		if r.CanonicalName == "" || r.CountryCode == "" || r.TZ == "" {
			t.Errorf("record missing required field: %+v", r)
		}
	}
}
