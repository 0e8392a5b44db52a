package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"campus-event-system/internal/calsync"
	"campus-event-system/internal/cancel"
	"campus-event-system/internal/config"
	"campus-event-system/internal/courses"
	"campus-event-system/internal/feed"
	"campus-event-system/internal/model"
	"campus-event-system/internal/notify"
	"campus-event-system/internal/store"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "campusevents",
		Usage: "Campus event lifecycle demos: cancellation, undo, notifications, calendar sync.",
		Commands: []*cli.Command{
			demoCommand(),
			validateCommand(),
			cancelCommand(),
			notifyCommand(),
			syncCommand(),
			coursesCommand(),
			alertsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Walk the full cancellation lifecycle: reject, cancel, sync, expire, undo.",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel)
			clock := newSimClock()
			sys := buildSystem(cfg, logger, cancel.WithClock(clock.Now))

			ev := sys.seedEvent("evt_0301", "Advanced Algorithms Review Session",
				"Final exam preparation", 8, "prof_martinez", "Dr. Jennifer Martinez")
			sys.seedRSVPs(ev.ID, 3)
			organizer, err := model.NewUser("prof_martinez", "Dr. Jennifer Martinez",
				"jennifer.martinez@"+cfg.OrgDomain, model.RoleTeacher)
			if err != nil {
				return err
			}
			logger.Info("event scheduled", "event", ev.ID, "title", ev.Title,
				"starts_at", ev.StartsAt, "rsvps", sys.rsvps.Count(ev.ID))

			// A blank reason this close to start must be rejected before
			// anything changes.
			if _, err := sys.manager.Cancel(c.Context, ev, organizer, ""); errors.Is(err, cancel.ErrReasonRequired) {
				logger.Warn("cancellation rejected", "err", err,
					"status", ev.Status, "in_feed", sys.feed.Contains(ev.ID))
			} else if err != nil {
				return err
			}

			res, err := sys.manager.Cancel(c.Context, ev, organizer, "sick")
			if err != nil {
				return err
			}
			logger.Info("event canceled", "event", ev.ID, "status", res.Status,
				"urgent", res.Notifications.Urgent, "notified", res.Notifications.NotificationsSent,
				"removed_from_feed", res.RemovedFromFeed, "undo_deadline", res.UndoDeadline)

			if ok, _ := sys.manager.CanUndo(ev); ok {
				logger.Info("undo available", "event", ev.ID, "window", sys.manager.UndoWindow())
			}

			report, err := sys.calendar.Sync(c.Context, ev, cfg.Integrations...)
			if err != nil {
				return err
			}
			logger.Info("calendar sync complete", "event", ev.ID,
				"ics_bytes", report.ICSSize, "synced", report.Synced, "failed", report.Failed)

			clock.Advance(11 * time.Minute)
			if ok, reason := sys.manager.CanUndo(ev); !ok {
				logger.Warn("undo no longer available", "event", ev.ID, "reason", reason)
			}
			if _, err := sys.manager.UndoCancel(c.Context, ev, organizer); errors.Is(err, cancel.ErrUndoExpired) {
				logger.Warn("undo rejected", "err", err, "status", ev.Status)
			} else if err != nil {
				return err
			}

			// Second event: a roomy cancellation undone inside the window.
			ev2 := sys.seedEvent("evt_0302", "Web Development Workshop",
				"React and Node.js fundamentals", 72, "prof_chen", "Dr. Michael Chen")
			sys.seedRSVPs(ev2.ID, 2)
			chen, err := model.NewUser("prof_chen", "Dr. Michael Chen",
				"michael.chen@"+cfg.OrgDomain, model.RoleTeacher)
			if err != nil {
				return err
			}
			if _, err := sys.manager.Cancel(c.Context, ev2, chen, "Rescheduling to next month due to low enrollment"); err != nil {
				return err
			}
			undo, err := sys.manager.UndoCancel(c.Context, ev2, chen)
			if err != nil {
				return err
			}
			logger.Info("cancellation undone", "event", ev2.ID, "status", undo.Status,
				"elapsed_seconds", undo.ElapsedSeconds, "restored_to_feed", undo.RestoredToFeed,
				"restoration_notices", undo.Notifications.NotificationsSent)

			logger.Info("demo complete", "events", len(sys.events.All()),
				"feed", len(sys.feed.Events()), "notices_logged", sys.notices.Len())
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check a cancellation reason against the 24-hour rule.",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "hours", Value: 8, Usage: "Hours from now the sample event starts."},
			&cli.StringFlag{Name: "reason", Usage: "Cancellation reason to validate."},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel)

			start := time.Now().Add(time.Duration(c.Float64("hours") * float64(time.Hour)))
			ev := &model.Event{
				ID:            "evt_0001",
				Title:         "Database Design Lecture",
				StartsAt:      start,
				EndsAt:        start.Add(2 * time.Hour),
				OrganizerID:   "prof_martinez",
				OrganizerName: "Dr. Jennifer Martinez",
				Status:        model.StatusScheduled,
			}

			v, err := cancel.ValidateCancellationReason(ev, c.String("reason"), time.Now())
			if err != nil {
				return err
			}
			logger.Info("validation passed", "late_cancellation", v.LateCancellation,
				"hours_until_start", v.HoursUntilStart, "message", v.Message)
			return nil
		},
	}
}

func cancelCommand() *cli.Command {
	return &cli.Command{
		Name:  "cancel",
		Usage: "Cancel a seeded student-organized event, optionally undoing it.",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "hours", Value: 8, Usage: "Hours from now the sample event starts."},
			&cli.StringFlag{Name: "reason", Value: "Organizer is sick", Usage: "Cancellation reason."},
			&cli.StringFlag{Name: "actor", Value: "teacher", Usage: "Who cancels: teacher, organizer or stranger."},
			&cli.BoolFlag{Name: "undo", Usage: "Undo the cancellation right away."},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel)
			sys := buildSystem(cfg, logger)

			ev := sys.seedEvent("evt_0101", "CS Club Game Night", "Board games and pizza",
				c.Float64("hours"), "stu_001", "Alice Johnson")
			sys.seedRSVPs(ev.ID, 3)

			actor, err := sys.actorFor(c.String("actor"))
			if err != nil {
				return err
			}

			res, err := sys.manager.Cancel(c.Context, ev, actor, c.String("reason"))
			if err != nil {
				return fmt.Errorf("cancel %s as %s: %w", ev.ID, actor.ID, err)
			}
			logger.Info("event canceled", "event", ev.ID, "by", res.CanceledBy,
				"reason", res.Reason, "urgent", res.Notifications.Urgent,
				"notified", res.Notifications.NotificationsSent, "undo_deadline", res.UndoDeadline)

			ok, why := sys.manager.CanUndo(ev)
			logger.Info("undo check", "event", ev.ID, "can_undo", ok, "reason", why)

			if !c.Bool("undo") {
				return nil
			}
			undo, err := sys.manager.UndoCancel(c.Context, ev, actor)
			if err != nil {
				return fmt.Errorf("undo %s as %s: %w", ev.ID, actor.ID, err)
			}
			logger.Info("cancellation undone", "event", ev.ID, "status", undo.Status,
				"elapsed_seconds", undo.ElapsedSeconds, "restored_to_feed", undo.RestoredToFeed)
			return nil
		},
	}
}

func notifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Fan out cancellation notices to confirmed RSVPs.",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "hours", Value: 8, Usage: "Hours from now the sample event starts."},
			&cli.IntFlag{Name: "rsvps", Value: 3, Usage: "How many confirmed RSVPs to seed."},
			&cli.StringFlag{Name: "reason", Value: "Professor has a family emergency", Usage: "Cancellation reason carried in the notices."},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel)
			sys := buildSystem(cfg, logger)

			ev := sys.seedEvent("evt_0201", "Database Design Lecture",
				"Normalization and indexing", c.Float64("hours"), "prof_martinez", "Dr. Jennifer Martinez")
			sys.seedRSVPs(ev.ID, c.Int("rsvps"))
			ev.Cancel(c.String("reason"), "prof_martinez", time.Now())

			res, err := sys.dispatch.NotifyCancellation(c.Context, ev)
			if err != nil {
				return err
			}
			logger.Info("notices sent", "event", res.EventID, "rsvps", res.RSVPCount,
				"sent", res.NotificationsSent, "urgent", res.Urgent,
				"hours_until_start", res.HoursUntilStart, "students", res.NotifiedStudents)
			logger.Info("notification log", "event", ev.ID, "entries", len(sys.notices.Entries(ev.ID, "")))
			return nil
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Render a sample event as ICS and push it to calendar integrations.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "canceled", Usage: "Cancel the sample event before syncing."},
			&cli.StringSliceFlag{Name: "integration", Usage: "Integration to push to (repeatable). Defaults to EVENTS_INTEGRATIONS."},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel)
			sys := buildSystem(cfg, logger)

			ev := sys.seedEvent("evt_0401", "Advanced Algorithms Review Session",
				"Final exam preparation", 10, "prof_edwards", "Dr. Sarah Edwards")
			if c.Bool("canceled") {
				ev.Cancel("Professor Edwards has a family emergency and cannot attend",
					"prof_edwards", time.Now())
			}

			integrations := c.StringSlice("integration")
			if len(integrations) == 0 {
				integrations = cfg.Integrations
			}

			report, err := sys.calendar.Sync(c.Context, ev, integrations...)
			if err != nil {
				return err
			}
			logger.Info("sync report", "event", report.EventID, "status", report.EventStatus,
				"ics_bytes", report.ICSSize, "synced", report.Synced, "failed", report.Failed)
			for _, r := range report.Results {
				logger.Info("sync result", "integration", r.Integration,
					"success", r.Success, "message", r.Message)
			}
			logger.Info("sync history", "event", ev.ID, "attempts", len(sys.calendar.History(ev.ID, "")))
			return nil
		},
	}
}

func coursesCommand() *cli.Command {
	return &cli.Command{
		Name:  "courses",
		Usage: "Create course events and walk the conflict override flow.",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel)
			sys := buildSystem(cfg, logger)

			const profID, profName = "prof_edwards", "Dr. Sarah Edwards"
			for _, sec := range sys.courses.Sections(profID) {
				logger.Info("section", "id", sec.ID, "course", sec.CourseCode, "name", sec.Name)
			}

			start := time.Now().Add(96 * time.Hour)
			ev, err := sys.courses.CreateCourseEvent(profID, profName, "CS301",
				"Advanced Algorithms Review Session", "Final exam preparation",
				start, start.Add(2*time.Hour), "STEM Building, Room 305")
			if err != nil {
				return err
			}
			logger.Info("course event created", "event", ev.ID, "title", ev.Title)

			// Same room, overlapping window: the booking is refused and an
			// override request carries the draft instead.
			_, err = sys.courses.CreateCourseEvent(profID, profName, "CS201",
				"Data Structures Study Hall", "Midterm prep",
				start.Add(time.Hour), start.Add(3*time.Hour), "STEM Building, Room 305")
			if !errors.Is(err, courses.ErrScheduleConflict) {
				return fmt.Errorf("expected a schedule conflict, got %v", err)
			}
			logger.Warn("booking refused", "err", err)

			draft := model.EventDraft{
				Title:         "Data Structures Study Hall",
				Description:   "Midterm prep",
				StartsAt:      start.Add(time.Hour),
				EndsAt:        start.Add(3 * time.Hour),
				Location:      "STEM Building, Room 305",
				OrganizerID:   profID,
				OrganizerName: profName,
				CourseCode:    "CS201",
			}
			req := sys.courses.RequestOverride(draft, err.Error())
			logger.Info("override requested", "request", req.ID, "status", req.Status)

			approved, err := sys.courses.Decide(req.ID, "")
			if err != nil {
				return err
			}
			logger.Info("override approved", "request", approved.ID,
				"status", approved.Status, "events", len(sys.events.All()))

			denied := sys.courses.RequestOverride(draft, "room double-booked for exams")
			if _, err := sys.courses.Decide(denied.ID, "room unavailable all week"); err != nil {
				return err
			}
			logger.Info("override denied", "request", denied.ID)

			if _, err := sys.courses.CreateCourseEvent(profID, profName, "CS999",
				"Mystery Seminar", "", start, start.Add(time.Hour), ""); errors.Is(err, courses.ErrNotCourseOwner) {
				logger.Warn("booking refused", "err", err)
			}

			for _, r := range sys.courses.Requests() {
				logger.Info("override request", "request", r.ID, "status", r.Status, "deny_reason", r.DenyReason)
			}
			return nil
		},
	}
}

func alertsCommand() *cli.Command {
	return &cli.Command{
		Name:  "alerts",
		Usage: "Subscribe students to event alerts and deliver them.",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel)
			sys := buildSystem(cfg, logger)

			ev := sys.seedEvent("evt_0501", "CPSC Guest Speaker Seminar",
				"Industry talk on distributed systems", 48, "prof_chen", "Dr. Michael Chen")

			maria, err := model.NewUser("student_001", "Maria Garcia",
				"maria.garcia@"+cfg.OrgDomain, model.RoleStudent)
			if err != nil {
				return err
			}
			james, err := model.NewUser("student_002", "James Wilson",
				"james.wilson@"+cfg.OrgDomain, model.RoleStudent)
			if err != nil {
				return err
			}

			alerts := []model.Alert{
				{ID: "alert_0001", Kind: model.AlertReminder, EventID: ev.ID, EventTitle: ev.Title, Enabled: true},
				{ID: "alert_0002", Kind: model.AlertNewEvent, EventID: ev.ID, EventTitle: ev.Title, Enabled: true},
				{ID: "alert_0003", Kind: model.AlertMaintenance, EventTitle: ev.Title, Enabled: true},
			}

			maria.SubscribeAlert("alert_0001")
			maria.SubscribeAlert("alert_0002")
			maria.SubscribeAlert("alert_0001") // repeat subscribe is a no-op
			james.SubscribeAlert("alert_0003")
			logger.Info("subscriptions", "maria", maria.SubscribedAlerts(), "james", james.SubscribedAlerts())

			maria.UnsubscribeAlert("alert_0002")
			alerts[2].UpdatePreferences(false)

			for _, user := range []*model.User{maria, james} {
				for _, a := range alerts {
					if !subscribed(user, a.ID) {
						continue
					}
					sent := sys.dispatch.SendAlert(c.Context, a, user)
					logger.Info("alert delivery", "alert", a.ID, "kind", a.Kind,
						"to", user.ID, "sent", sent, "message", a.Render())
				}
			}
			return nil
		},
	}
}

// ----- wiring -----

type system struct {
	cfg      *config.Config
	log      *slog.Logger
	events   *store.EventStore
	rsvps    *store.RSVPStore
	feed     *feed.Feed
	notices  *notify.Log
	dispatch *notify.Dispatcher
	manager  *cancel.Manager
	calendar *calsync.Adapter
	courses  *courses.Service
}

func buildSystem(cfg *config.Config, logger *slog.Logger, opts ...cancel.Option) *system {
	events := store.NewEventStore()
	rsvps := store.NewRSVPStore()
	fd := feed.New()
	notices := notify.NewLog()
	mailer := notify.NewSimMailer(logger, cfg.NotifyRate, cfg.NotifyBurst)
	dispatch := notify.NewDispatcher(rsvps, mailer, notices)
	opts = append([]cancel.Option{cancel.WithUndoWindow(cfg.UndoWindow())}, opts...)

	return &system{
		cfg:      cfg,
		log:      logger,
		events:   events,
		rsvps:    rsvps,
		feed:     fd,
		notices:  notices,
		dispatch: dispatch,
		manager:  cancel.NewManager(dispatch, fd, opts...),
		calendar: calsync.NewAdapter(logger, cfg.OrgDomain),
		courses:  courses.NewService(events, fd),
	}
}

func (s *system) seedEvent(id, title, description string, hoursOut float64, organizerID, organizerName string) *model.Event {
	start := time.Now().Add(time.Duration(hoursOut * float64(time.Hour)))
	ev := &model.Event{
		ID:            id,
		Title:         title,
		Description:   description,
		StartsAt:      start,
		EndsAt:        start.Add(2 * time.Hour),
		Location:      "STEM Building, Room 305",
		OrganizerID:   organizerID,
		OrganizerName: organizerName,
		Status:        model.StatusScheduled,
	}
	if err := s.events.Create(ev); err != nil {
		s.log.Warn("seed event exists", "event", id, "err", err)
	}
	s.feed.Add(ev)
	return ev
}

func (s *system) seedRSVPs(eventID string, n int) {
	names := []struct{ id, name string }{
		{"stu_001", "Alice Johnson"},
		{"stu_002", "Bob Smith"},
		{"stu_003", "Carol Williams"},
	}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("stu_%03d", i+1)
		name := fmt.Sprintf("Student %d", i+1)
		if i < len(names) {
			id, name = names[i].id, names[i].name
		}
		email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@" + s.cfg.OrgDomain
		s.rsvps.Create(eventID, id, name, email)
	}
}

// actorFor resolves the cancel command's --actor flag against the seeded
// student-organized event: Alice organizes it, Bob is just another student.
func (s *system) actorFor(kind string) (*model.User, error) {
	switch kind {
	case "teacher":
		return model.NewUser("prof_edwards", "Dr. Sarah Edwards",
			"sarah.edwards@"+s.cfg.OrgDomain, model.RoleTeacher)
	case "organizer":
		return model.NewUser("stu_001", "Alice Johnson",
			"alice.johnson@"+s.cfg.OrgDomain, model.RoleStudent)
	case "stranger":
		return model.NewUser("stu_002", "Bob Smith",
			"bob.smith@"+s.cfg.OrgDomain, model.RoleStudent)
	default:
		return nil, fmt.Errorf("unknown actor %q (want teacher, organizer or stranger)", kind)
	}
}

func subscribed(u *model.User, alertID string) bool {
	for _, id := range u.SubscribedAlerts() {
		if id == alertID {
			return true
		}
	}
	return false
}

// ----- clock -----

// simClock lets the demo jump time forward without sleeping.
type simClock struct {
	mu sync.Mutex
	t  time.Time
}

func newSimClock() *simClock { return &simClock{t: time.Now()} }

func (c *simClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *simClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
