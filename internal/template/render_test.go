package template

import (
	"strings"
	"testing"

	"github.com/catsflats/backend/internal/model"
)

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello world", "hello world"},
		{"dot-and-bang", "Hi there. Really!", `Hi there\. Really\!`},
		{"formatting-chars", "a_b*c[d]e", `a\_b\*c\[d\]e`},
		{"backslash", `a\b`, `a\\b`},
		{"url", "https://example.com/x?a=1", `https://example\.com/x?a\=1`},
		{"unicode-kept", "Мурка 🐈", "Мурка 🐈"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeMarkdownV2(tt.input); got != tt.want {
				t.Fatalf("EscapeMarkdownV2(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestProfilePreview(t *testing.T) {
	got := ProfilePreview(model.Profile{
		Name:    "Ada L.",
		City:    "Lisbon",
		Country: "Portugal",
		Intro:   "We love travel!",
		CatName: "Мурка",
	})

	for _, want := range []string{
		`\[Ada L\.\] / \#City: Lisbon, Portugal`,
		`\[About\]`,
		`We love travel\!`,
		"Cat: Мурка",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("preview missing %q:\n%s", want, got)
		}
	}
}

func TestListingCard(t *testing.T) {
	got := ListingCard(
		model.Profile{Name: "Ada", CatName: "Мурка"},
		model.Listing{
			City:                  "Lisbon",
			Country:               "Portugal",
			ApartmentDescription:  "Cozy flat near the river.",
			Dates:                 "01.06.2030 - 15.06.2030",
			Conditions:            "Exchange preferred",
			PreferredDestinations: "Berlin, Paris",
		},
	)

	for _, want := range []string{
		"*Ada is looking for a sitter*",
		`City: \#Lisbon, Portugal`,
		"Cat: Мурка",
		"🏡 *Home*",
		`Cozy flat near the river\.`,
		"📅 *Dates*",
		`01\.06\.2030 \- 15\.06\.2030`,
		`📝 *Conditions \(exchange or payment\)*`,
		"🌍 *Preferred destinations*",
		"Berlin, Paris",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("card missing %q:\n%s", want, got)
		}
	}
}
