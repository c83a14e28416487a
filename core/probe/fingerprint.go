package probe

import (
	"bytes"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/qascope/qascope/schema"
)

// frameworkMarkers are lowercase substrings that identify a frontend framework.
var frameworkMarkers = []struct {
	Name    string
	Markers []string
}{
	{"react", []string{"react", "data-reactroot", "__react"}},
	{"vue", []string{"vue", "data-v-", "__vue"}},
	{"angular", []string{"angular", "ng-version", "ng-app"}},
	{"svelte", []string{"svelte"}},
	{"next.js", []string{"next.js", "__next", "_next/static"}},
	{"nuxt", []string{"nuxt", "__nuxt"}},
}

var trackedTags = []string{"html", "meta", "script", "style", "link"}

// Fingerprint fills the framework, tag, title and error-marker fields from a response body.
func Fingerprint(report *schema.EndpointReport, body []byte, header http.Header) {
	lower := strings.ToLower(string(body))
	if header != nil {
		lower += " " + strings.ToLower(header.Get("X-Powered-By"))
	}

	for _, fw := range frameworkMarkers {
		for _, marker := range fw.Markers {
			if strings.Contains(lower, marker) {
				report.Frameworks = append(report.Frameworks, fw.Name)
				break
			}
		}
	}
	report.ErrorMarker = strings.Contains(lower, "error") || strings.Contains(lower, "exception")

	title, tags := scanMarkup(body)
	report.Title = title
	report.Tags = tags
}

// scanMarkup tokenizes body and returns the document title and the tracked
// tags present, in trackedTags order.
func scanMarkup(body []byte) (string, []string) {
	seen := map[string]bool{}
	var title strings.Builder
	inTitle := false
	titleDone := false

	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			var tags []string
			for _, tag := range trackedTags {
				if seen[tag] {
					tags = append(tags, tag)
				}
			}
			return strings.TrimSpace(title.String()), tags
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if slices.Contains(trackedTags, tag) {
				seen[tag] = true
			}
			if tag == "title" && !titleDone {
				inTitle = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "title" && inTitle {
				inTitle = false
				titleDone = true
			}
		case html.TextToken:
			if inTitle {
				title.Write(z.Text())
			}
		}
	}
}
