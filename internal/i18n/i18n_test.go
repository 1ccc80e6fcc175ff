package i18n

import "testing"

func TestLookup(t *testing.T) {
	en := Lookup("en")
	if en.MarketNews != "Market News" || en.DeepResearch != "Deep Research" {
		t.Errorf("unexpected english labels: %+v", en)
	}
	if en.RTL() {
		t.Error("english should be ltr")
	}

	ar := Lookup("AR")
	if ar.Code != "ar" || !ar.RTL() {
		t.Errorf("expected rtl arabic dictionary, got %+v", ar)
	}

	if got := Lookup("xx"); got.Code != DefaultLanguage {
		t.Errorf("expected fallback to en, got %q", got.Code)
	}
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	if len(langs) != 2 || langs[0] != "ar" || langs[1] != "en" {
		t.Errorf("unexpected languages %v", langs)
	}
}

func TestParseRequiresDefault(t *testing.T) {
	if _, err := parse([]byte("fr:\n  marketNews: Marché\n")); err == nil {
		t.Fatal("expected error without default language")
	}
}
