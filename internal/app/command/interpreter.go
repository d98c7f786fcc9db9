// Package command extracts directives from assistant replies and applies them
// against the host application.
//
// The grammar is embedded inside free-form natural language, because the text
// generator is not guaranteed to emit structured output. Extraction is a
// tolerant best-effort scan: absence of a pattern is the normal case and
// malformed fields simply fail to match.
package command

import (
	"regexp"
	"strings"

	"github.com/auralabs/lyra/internal/domain"
)

var (
	setUIPattern    = regexp.MustCompile(`SET_UI:(\w+):(true|false)`)
	addTaskPattern  = regexp.MustCompile(`ADD_TASK:([^\]\n]+)`)
	schedulePattern = regexp.MustCompile(`SCHEDULE_EVENT:([^:]+):([^:]+):([^\]\n]+)`)
)

var navScreens = []domain.Screen{
	domain.ScreenHome,
	domain.ScreenSkills,
	domain.ScreenAnalysis,
	domain.ScreenExplore,
	domain.ScreenCalendar,
}

// Extract scans the full text once per pattern, independently, so multiple
// directives can coexist in any order. At most one directive of each kind is
// produced; the first match wins.
func Extract(text string) []domain.Directive {
	var out []domain.Directive

	for _, screen := range navScreens {
		if strings.Contains(text, "NAV_TO:"+string(screen)) {
			out = append(out, domain.Navigate{Screen: screen})
			break
		}
	}

	if m := setUIPattern.FindStringSubmatch(text); m != nil {
		out = append(out, domain.SetUIFlag{Name: m[1], Value: m[2] == "true"})
	}

	if m := addTaskPattern.FindStringSubmatch(text); m != nil {
		if label := strings.TrimSpace(m[1]); label != "" {
			out = append(out, domain.AddTask{Label: label})
		}
	}

	if m := schedulePattern.FindStringSubmatch(text); m != nil {
		out = append(out, domain.ScheduleEvent{
			Title: strings.TrimSpace(m[1]),
			Date:  strings.TrimSpace(m[2]),
			Time:  strings.TrimSpace(m[3]),
		})
	}

	return out
}
