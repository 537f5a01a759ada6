// Package template renders channel post captions in Telegram MarkdownV2.
package template

import (
	"strings"

	"github.com/catsflats/backend/internal/model"
)

// mdv2Specials are the characters MarkdownV2 requires escaping outside of
// entities. Backslash itself is handled first by EscapeMarkdownV2.
const mdv2Specials = "_*[]()~`>#+-=|{}.!"

// EscapeMarkdownV2 escapes free text for safe inclusion in a MarkdownV2
// message.
func EscapeMarkdownV2(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r == '\\' || strings.ContainsRune(mdv2Specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ProfilePreview renders the caption used for profile posts and the preview
// shown in the mini-app.
func ProfilePreview(profile model.Profile) string {
	lines := []string{
		`\[` + EscapeMarkdownV2(profile.Name) + `\] / \#City: ` + EscapeMarkdownV2(profile.City) + `, ` + EscapeMarkdownV2(profile.Country),
		`\[About\]`,
		EscapeMarkdownV2(profile.Intro),
		"Cat: " + EscapeMarkdownV2(profile.CatName),
	}
	return strings.Join(lines, "\n")
}

// ListingCard renders the channel announcement for a listing.
func ListingCard(profile model.Profile, listing model.Listing) string {
	lines := []string{
		"*" + EscapeMarkdownV2(profile.Name) + " is looking for a sitter*",
		`City: \#` + EscapeMarkdownV2(listing.City) + ", " + EscapeMarkdownV2(listing.Country),
		"",
		"Cat: " + EscapeMarkdownV2(profile.CatName),
		"",
		"🏡 *Home*",
		EscapeMarkdownV2(listing.ApartmentDescription),
		"",
		"📅 *Dates*",
		EscapeMarkdownV2(listing.Dates),
		"",
		`📝 *Conditions \(exchange or payment\)*`,
		EscapeMarkdownV2(listing.Conditions),
		"",
		"🌍 *Preferred destinations*",
		EscapeMarkdownV2(listing.PreferredDestinations),
	}
	return strings.Join(lines, "\n")
}
