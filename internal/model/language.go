package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// SubtitleLabel renders a language code in the "Name (code)" form used by
// subtitle selectors, e.g. "English (en)". Codes that do not parse as BCP 47
// tags are labelled with the code alone.
func SubtitleLabel(code string) string {
	code = strings.TrimSpace(code)
	tag, err := language.Parse(code)
	if err != nil {
		return fmt.Sprintf("%s (%s)", code, code)
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		name = code
	}
	return fmt.Sprintf("%s (%s)", name, code)
}

// SubtitleLabels maps each code of the item to its selector label.
func (q *QueueItem) SubtitleLabels() []string {
	labels := make([]string, 0, len(q.SubtitleLanguages))
	for _, code := range q.SubtitleLanguages {
		labels = append(labels, SubtitleLabel(code))
	}
	return labels
}

// ValidLanguageCode reports whether code parses as a BCP 47 tag. Source
// specific suffixes such as "en-orig" or "live_chat" are rejected.
func ValidLanguageCode(code string) bool {
	if code == "" {
		return false
	}
	_, err := language.Parse(code)
	return err == nil
}
