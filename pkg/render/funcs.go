package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/rubiojr/cinegrid/pkg/catalog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Title upper-cases the first letter of every word.
func Title(s string) string {
	return titleCaser.String(s)
}

// FormatTime formats a time for display
func FormatTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2, 2006")
	}
}

// Truncate shortens s to at most n runes, adding an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

// ItemJSON is the denormalized copy posted by the favorite toggle form.
func ItemJSON(it catalog.Item) string {
	data, err := json.Marshal(it)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// GetTemplateFuncs returns the functions available to card and page
// templates.
func GetTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime": FormatTime,
		"truncate":   Truncate,
		"itemJSON":   ItemJSON,
		"title":      Title,
		"upper":      strings.ToUpper,
		"lower":      strings.ToLower,
		"kindLabel":  func(k catalog.Kind) string { return k.Label() },
		"youtube": func(key string) string {
			return "https://www.youtube.com/watch?v=" + key
		},
		"add": func(a, b int) int { return a + b },
	}
}
