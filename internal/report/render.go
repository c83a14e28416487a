package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
)

// ruleWidth is the width of the line under a report title.
const ruleWidth = 50

// Options controls text rendering.
type Options struct {
	UseEmojis bool
	UseColors bool
	Limit     int // max lines per section, 0 = unlimited
}

// OptionsFromConfig derives render options from the runtime config.
func OptionsFromConfig(cfg *contract.Config) Options {
	return Options{UseEmojis: cfg.UseEmojis, UseColors: cfg.UseColors, Limit: cfg.ResultLimit}
}

// RenderText writes the fixed-format text rendering of a report.
func RenderText(w io.Writer, r schema.Report, opts Options) error {
	var b strings.Builder

	title := r.Title
	if title == "" {
		title = strings.ToUpper(string(r.Analyzer))
	}
	if opts.UseEmojis {
		if emoji, ok := titleEmojis[r.Analyzer]; ok {
			title = emoji + " " + title
		}
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	if r.Target != "" {
		fmt.Fprintf(&b, "Target: %s\n", r.Target)
	}

	if r.Failed {
		prefix := ""
		if opts.UseEmojis {
			prefix = "❌ "
		}
		fmt.Fprintf(&b, "\n%sAnalysis failed: %s\n", prefix, r.Error)
		_, err := io.WriteString(w, b.String())
		return err
	}

	for _, s := range r.Sections {
		fmt.Fprintf(&b, "\n%s\n", s.Heading)
		bullet := "-"
		if opts.UseEmojis {
			bullet = "•"
		}
		shown := s.Lines
		if opts.Limit > 0 && len(shown) > opts.Limit {
			shown = shown[:opts.Limit]
		}
		for _, line := range shown {
			fmt.Fprintf(&b, "  %s %s\n", bullet, line)
		}
		if hidden := len(s.Lines) - len(shown); hidden > 0 {
			fmt.Fprintf(&b, "  ... and %d more\n", hidden)
		}
	}

	if r.Score != nil {
		label := schema.GetPlainLabel(*r.Score)
		if opts.UseColors {
			label = contract.GetColorLabel(*r.Score)
		}
		prefix := ""
		if opts.UseEmojis {
			prefix = "🎯 "
		}
		fmt.Fprintf(&b, "\n%sScore: %d/10 (%s)\n", prefix, *r.Score, label)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Text returns the text rendering of a report.
func Text(r schema.Report, opts Options) string {
	var b strings.Builder
	_ = RenderText(&b, r, opts)
	return b.String()
}
