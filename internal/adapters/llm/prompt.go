package llm

import (
	"strings"

	"github.com/auralabs/lyra/internal/domain"
)

const baseSystemPrompt = `You are Lyra, the Central Control Unit for Aura. Professional, stable, and deterministic.
AUTHORITY: Navigation, Accessibility, Task Logging, Scheduler.
TONE: 1-2 concise sentences. Grounded. Professional. No destiny language. ALWAYS conversational.
COMMANDS: NAV_TO:[HOME/SKILLS/ANALYSIS/EXPLORE/CALENDAR], SET_UI:[settingName]:[true/false], ADD_TASK:[label], SCHEDULE_EVENT:[title]:[YYYY-MM-DD]:[HH:MM]`

// ttsStylePrefix frames each spoken utterance for the speech model.
const ttsStylePrefix = "Say professional yet friendly: "

// BuildSystemPrompt builds the full system instruction: Lyra's identity and
// command authority, plus the active persona's voice direction.
func BuildSystemPrompt(p domain.Persona) string {
	var b strings.Builder
	b.WriteString(baseSystemPrompt)
	if p.Name != "" {
		b.WriteString("\nPERSONA: ")
		b.WriteString(p.Name)
		b.WriteString(". ")
		b.WriteString(p.Description)
		b.WriteString("\nVOICE DIRECTION: ")
		b.WriteString(p.Tone)
	}
	return b.String()
}
