package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/auralabs/lyra/internal/domain"
	"github.com/auralabs/lyra/internal/observability"
)

const eventColor = "#D4AF37"

// Host bundles the callbacks the surrounding application exposes to the
// conversational core. The core never owns profile or settings state; it
// reads through Profile and writes through UpdateProfile/SetFlag, which the
// host applies atomically.
type Host struct {
	Navigate      func(domain.Screen)
	SetFlag       func(name string, value bool)
	Profile       func() domain.UserProfile
	UpdateProfile func(domain.ProfilePatch)
}

// Applier turns directives into side effects against a Host.
type Applier struct {
	host  Host
	now   func() time.Time
	newID func() string
}

func NewApplier(host Host) *Applier {
	return &Applier{
		host:  host,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Apply executes each directive in turn. Directives with a missing callback
// are skipped; nothing here can fail the conversation.
func (a *Applier) Apply(ctx context.Context, directives []domain.Directive) {
	log := observability.LoggerFromContext(ctx)

	for _, d := range directives {
		switch d := d.(type) {
		case domain.Navigate:
			if a.host.Navigate != nil {
				a.host.Navigate(d.Screen)
				log.Info("directive applied", "directive", "navigate", "screen", d.Screen)
			}

		case domain.SetUIFlag:
			if a.host.SetFlag != nil {
				a.host.SetFlag(d.Name, d.Value)
				log.Info("directive applied", "directive", "set_ui", "flag", d.Name, "value", d.Value)
			}

		case domain.AddTask:
			if a.host.Profile == nil || a.host.UpdateProfile == nil {
				continue
			}
			checklist := append(a.host.Profile().Checklist, domain.Task{
				ID:        a.newID(),
				Label:     d.Label,
				Type:      "Task",
				Priority:  domain.PriorityMedium,
				CreatedAt: a.now(),
			})
			a.host.UpdateProfile(domain.ProfilePatch{Checklist: &checklist})
			log.Info("directive applied", "directive", "add_task", "label", d.Label)

		case domain.ScheduleEvent:
			if a.host.Profile == nil || a.host.UpdateProfile == nil {
				continue
			}
			events := append(a.host.Profile().Events, domain.CalendarEvent{
				ID:       a.newID(),
				Title:    d.Title,
				Date:     d.Date,
				Time:     d.Time,
				Type:     "Schedule",
				Priority: domain.PriorityMedium,
				Color:    eventColor,
			})
			a.host.UpdateProfile(domain.ProfilePatch{Events: &events})
			log.Info("directive applied", "directive", "schedule_event", "title", d.Title)
		}
	}
}
