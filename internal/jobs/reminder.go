package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/forgo/reginald/internal/service"
)

// ReminderProcessor sends day-before event reminders once per day.
type ReminderProcessor struct {
	reminderService *service.ReminderService
	sendAtHour      int
	stopCh          chan struct{}
	wg              sync.WaitGroup
	running         bool
	mu              sync.Mutex
}

// NewReminderProcessor creates a new reminder processor job. sendAtHour is
// the local hour of day (0-23) at which reminders go out.
func NewReminderProcessor(reminderService *service.ReminderService, sendAtHour int) *ReminderProcessor {
	if sendAtHour < 0 || sendAtHour > 23 {
		sendAtHour = 9 // Default morning delivery
	}
	return &ReminderProcessor{
		reminderService: reminderService,
		sendAtHour:      sendAtHour,
		stopCh:          make(chan struct{}),
	}
}

// Start begins the reminder processor job
func (p *ReminderProcessor) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
	log.Printf("Reminder processor started (send hour: %02d:00)", p.sendAtHour)
}

// Stop gracefully stops the reminder processor job
func (p *ReminderProcessor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	log.Println("Reminder processor stopped")
}

// run sleeps until the next send hour, fires, and repeats daily
func (p *ReminderProcessor) run() {
	defer p.wg.Done()

	for {
		timer := time.NewTimer(p.untilNextSend(time.Now()))
		select {
		case <-timer.C:
			p.sendReminders()
		case <-p.stopCh:
			timer.Stop()
			return
		}
	}
}

// untilNextSend returns the duration until the next send hour after now
func (p *ReminderProcessor) untilNextSend(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), p.sendAtHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// sendReminders delivers the day's reminders
func (p *ReminderProcessor) sendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	previews, err := p.reminderService.SendReminders(ctx, false)
	if err != nil {
		log.Printf("Error sending reminders: %v", err)
		return
	}
	if len(previews) > 0 {
		log.Printf("Sent %d reminder(s)", len(previews))
	}
}

// RunOnce sends the reminders once (for testing or manual trigger)
func (p *ReminderProcessor) RunOnce(ctx context.Context, dryRun bool) ([]service.ReminderPreview, error) {
	return p.reminderService.SendReminders(ctx, dryRun)
}

// IsRunning returns whether the processor is running
func (p *ReminderProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
