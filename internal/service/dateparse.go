package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/catsflats/backend/internal/apperr"
)

// Free-text date range normalization for listing input. Accepts numeric
// dates (1.6, 01/06/2025) and textual ones (15 june, 15 июня 2025) in
// Russian or English, and renders the range as DD.MM.YYYY - DD.MM.YYYY.

var monthAliases = map[string]int{
	"январь": 1, "января": 1, "янв": 1, "jan": 1, "january": 1,
	"февраль": 2, "февраля": 2, "фев": 2, "feb": 2, "february": 2,
	"март": 3, "марта": 3, "мар": 3, "mar": 3, "march": 3,
	"апрель": 4, "апреля": 4, "апр": 4, "apr": 4, "april": 4,
	"май": 5, "мая": 5, "may": 5,
	"июнь": 6, "июня": 6, "июн": 6, "jun": 6, "june": 6,
	"июль": 7, "июля": 7, "июл": 7, "jul": 7, "july": 7,
	"август": 8, "августа": 8, "авг": 8, "aug": 8, "august": 8,
	"сентябрь": 9, "сентября": 9, "сен": 9, "sep": 9, "sept": 9, "september": 9,
	"октябрь": 10, "октября": 10, "окт": 10, "oct": 10, "october": 10,
	"ноябрь": 11, "ноября": 11, "ноя": 11, "nov": 11, "november": 11,
	"декабрь": 12, "декабря": 12, "дек": 12, "dec": 12, "december": 12,
}

var (
	dateTokenRe   = regexp.MustCompile(`(?i)(\d{1,2}[./-]\d{1,2}(?:[./-]\d{2,4})?|\d{1,2}\s+[a-zа-яё]+(?:\s+\d{2,4})?)`)
	numericDateRe = regexp.MustCompile(`^(\d{1,2})([./-])(\d{1,2})(?:([./-])(\d{2,4}))?$`)
	textDateRe    = regexp.MustCompile(`(?i)^(\d{1,2})\s+([a-zа-яё]+)(?:\s+(\d{2,4}))?$`)
	// yearMarkerRe strips a trailing Russian year marker ("2030 г."). It must
	// stay anchored to the end of the token so the letter inside month names
	// like "августа" is left alone.
	yearMarkerRe = regexp.MustCompile(`\s*г\.?$`)
	spaceRe      = regexp.MustCompile(`\s+`)
	nonLetterRe  = regexp.MustCompile(`[^a-zа-яё]`)
)

type parsedDate struct {
	day     int
	month   int
	year    int
	hasYear bool
	date    time.Time
}

// NormalizeDateRange extracts a start and end date from free text and
// formats the range. The end date inherits the start's year when none is
// given and rolls forward a year when it would otherwise precede the start.
func NormalizeDateRange(value string) (string, error) {
	input := strings.TrimSpace(value)
	if input == "" {
		return "", apperr.Validation("dates cannot be empty")
	}

	cleaned := spaceRe.ReplaceAllString(input, " ")
	tokens := dateTokenRe.FindAllString(cleaned, 2)
	if len(tokens) < 2 {
		return "", apperr.Validation("could not recognize a date range, provide both start and end")
	}

	currentYear := time.Now().Year()
	start, err := parseDateToken(tokens[0], currentYear)
	if err != nil {
		return "", err
	}
	end, err := parseDateToken(tokens[1], start.year)
	if err != nil {
		return "", err
	}

	if end.date.Before(start.date) {
		if end.hasYear {
			return "", apperr.Validation("end date is before start date, check the period")
		}
		end.date = end.date.AddDate(1, 0, 0)
		end.year = end.date.Year()
	}

	return fmt.Sprintf("%02d.%02d.%d - %02d.%02d.%d",
		start.day, start.month, start.year,
		end.day, end.month, end.year), nil
}

func parseDateToken(value string, fallbackYear int) (parsedDate, error) {
	original := strings.TrimSpace(value)
	normalized := strings.ToLower(original)
	normalized = yearMarkerRe.ReplaceAllString(normalized, "")
	normalized = spaceRe.ReplaceAllString(strings.TrimSpace(normalized), " ")

	if m := numericDateRe.FindStringSubmatch(normalized); m != nil {
		// both separators must match when a year is present
		if m[4] != "" && m[4] != m[2] {
			return parsedDate{}, apperr.Validation(fmt.Sprintf("could not recognize date %q", original))
		}
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[3])
		if day == 0 || month == 0 {
			return parsedDate{}, apperr.Validation(fmt.Sprintf("could not recognize date %q", original))
		}
		return buildParsedDate(day, month, m[5], fallbackYear, original)
	}

	if m := textDateRe.FindStringSubmatch(normalized); m != nil {
		day, _ := strconv.Atoi(m[1])
		if day == 0 {
			return parsedDate{}, apperr.Validation(fmt.Sprintf("could not recognize date %q", original))
		}
		month, err := resolveMonth(m[2], original)
		if err != nil {
			return parsedDate{}, err
		}
		return buildParsedDate(day, month, m[3], fallbackYear, original)
	}

	return parsedDate{}, apperr.Validation(fmt.Sprintf("could not recognize date %q", original))
}

func buildParsedDate(day, month int, yearRaw string, fallbackYear int, original string) (parsedDate, error) {
	year, hasYear, err := normalizeYear(yearRaw, fallbackYear, original)
	if err != nil {
		return parsedDate{}, err
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return parsedDate{}, apperr.Validation(fmt.Sprintf("date %q does not exist", original))
	}

	return parsedDate{day: day, month: month, year: year, hasYear: hasYear, date: date}, nil
}

func normalizeYear(raw string, fallback int, original string) (int, bool, error) {
	if raw == "" {
		return fallback, false, nil
	}
	switch len(raw) {
	case 2:
		value, _ := strconv.Atoi(raw)
		if value >= 70 {
			return 1900 + value, true, nil
		}
		return 2000 + value, true, nil
	case 4:
		value, _ := strconv.Atoi(raw)
		return value, true, nil
	default:
		return 0, false, apperr.Validation(fmt.Sprintf("year in date %q is invalid", original))
	}
}

func resolveMonth(raw, original string) (int, error) {
	sanitized := nonLetterRe.ReplaceAllString(strings.ToLower(raw), "")
	if sanitized == "" {
		return 0, apperr.Validation(fmt.Sprintf("month in date %q is not recognized", original))
	}
	if month, ok := monthAliases[sanitized]; ok {
		return month, nil
	}
	for alias, month := range monthAliases {
		if strings.HasPrefix(sanitized, alias) {
			return month, nil
		}
	}
	return 0, apperr.Validation(fmt.Sprintf("month in date %q is not recognized", original))
}
