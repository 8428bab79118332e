package prompt

import (
	"strings"
	"testing"
)

func TestBuildCoversAllRoleLanguagePairs(t *testing.T) {
	roles := []Role{RoleGeneral, RoleMath, RoleScience, RoleProgramming, RoleLanguage}
	languages := []Language{LanguageEnglish, LanguageArabic}
	question := "What is Newton's first law?"

	for _, role := range roles {
		for _, lang := range languages {
			got := Build(question, role, lang)
			if got == "" {
				t.Fatalf("empty prompt for %s/%s", role, lang)
			}
			if !strings.Contains(got, question) {
				t.Fatalf("prompt for %s/%s does not include the literal question", role, lang)
			}
		}
	}
}

func TestBuildGeneralEnglishPreamble(t *testing.T) {
	got := Build("What is Newton's first law?", RoleGeneral, LanguageEnglish)
	if !strings.Contains(got, "You are a friendly and helpful multi-disciplinary teacher") {
		t.Fatalf("unexpected preamble: %q", got)
	}
	if !strings.Contains(got, "Respond in English in an educational and clear manner:") {
		t.Fatalf("missing closing instruction: %q", got)
	}
}

func TestUnknownRoleFallsBackToGeneral(t *testing.T) {
	got := Build("why?", ParseRole("astrology"), LanguageEnglish)
	want := Build("why?", RoleGeneral, LanguageEnglish)
	if got != want {
		t.Fatalf("expected general fallback, got %q", got)
	}
}

func TestParseLanguage(t *testing.T) {
	if ParseLanguage("arabic") != LanguageArabic {
		t.Fatal("expected arabic")
	}
	if ParseLanguage("klingon") != LanguageEnglish {
		t.Fatal("expected english default")
	}
	if LanguageArabic.Code() != "ar" || LanguageEnglish.Code() != "en" {
		t.Fatal("unexpected language codes")
	}
}
