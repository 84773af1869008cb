package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/vocatrain/internal/notify"
	"github.com/go-co-op/gocron"
)

// Константы для настроек уведомлений по умолчанию
const (
	DefaultReminderStartHour = 8  // Earliest hour reminders may fire
	DefaultReminderEndHour   = 22 // Latest hour reminders may fire
)

// UsageRecorder receives the once-per-minute activity tick
type UsageRecorder interface {
	RecordUsageTick()
	AddStudyTime(minutes int)
}

// ReviewCounter reports how many items currently wait in the review sets
type ReviewCounter interface {
	ReviewCount() int
}

// UpdateChecker runs a background staged-version check
type UpdateChecker interface {
	CheckInBackground(ctx context.Context) (available bool, version string, err error)
}

// Scheduler manages the periodic tasks of the app: the usage tick, the
// daily study reminder and the staged-version poll.
type Scheduler struct {
	scheduler *gocron.Scheduler
	usage     UsageRecorder
	reviews   ReviewCounter
	checker   UpdateChecker
	channel   notify.Channel
	announced string
}

// New creates a new scheduler instance
func New(usage UsageRecorder, reviews ReviewCounter, checker UpdateChecker, channel notify.Channel) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		usage:     usage,
		reviews:   reviews,
		checker:   checker,
		channel:   channel,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	// Usage tracking counts active minutes
	s.scheduler.Every(1).Minute().Do(s.recordUsage)

	// Hourly reminder check, limited to the configured window
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminder)

	// Hourly poll for a staged content version
	s.scheduler.Every(1).Hour().Do(s.checkStagedVersion)

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// recordUsage counts the elapsed minute both as a usage bucket visit and as
// study time.
func (s *Scheduler) recordUsage() {
	s.usage.RecordUsageTick()
	s.usage.AddStudyTime(1)
}

// checkAndSendReminder nudges the learner when review items are waiting
func (s *Scheduler) checkAndSendReminder() {
	currentHour := time.Now().Hour()

	startHour := DefaultReminderStartHour
	endHour := DefaultReminderEndHour

	if startHourStr := os.Getenv("REMINDER_START_HOUR"); startHourStr != "" {
		if h, err := strconv.Atoi(startHourStr); err == nil && h >= 0 && h <= 23 {
			startHour = h
		}
	}
	if endHourStr := os.Getenv("REMINDER_END_HOUR"); endHourStr != "" {
		if h, err := strconv.Atoi(endHourStr); err == nil && h >= 0 && h <= 23 {
			endHour = h
		}
	}

	if currentHour < startHour || currentHour > endHour {
		return
	}

	due := s.reviews.ReviewCount()
	if due == 0 {
		return
	}
	if err := s.channel.Send(formatReminder(due)); err != nil {
		log.Printf("Error sending reminder: %v", err)
	}
}

// checkStagedVersion polls the update coordinator and announces a genuine
// update once through the notification channel.
func (s *Scheduler) checkStagedVersion() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	available, version, err := s.checker.CheckInBackground(ctx)
	if err != nil {
		log.Printf("Error checking for staged version: %v", err)
		return
	}
	if available && version != s.announced {
		s.announced = version
		if err := s.channel.Send("A new content version " + version + " is ready to install."); err != nil {
			log.Printf("Error sending update notice: %v", err)
		}
	}
}

func formatReminder(due int) string {
	if due == 1 {
		return "You have 1 word waiting for review."
	}
	return "You have " + strconv.Itoa(due) + " words waiting for review."
}
