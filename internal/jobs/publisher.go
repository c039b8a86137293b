package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/forgo/reginald/internal/service"
)

// ScheduledPublisher runs the event scheduling gate
// - Announces sessions whose post time has arrived
// - Leaves sessions untouched when their channel is not configured
type ScheduledPublisher struct {
	eventService *service.EventService
	interval     time.Duration
	stopCh       chan struct{}
	wg           sync.WaitGroup
	running      bool
	mu           sync.Mutex
}

// NewScheduledPublisher creates a new scheduled publisher job
func NewScheduledPublisher(eventService *service.EventService, interval time.Duration) *ScheduledPublisher {
	if interval == 0 {
		interval = 1 * time.Minute // Default check every minute
	}
	return &ScheduledPublisher{
		eventService: eventService,
		interval:     interval,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the scheduled publisher job
func (p *ScheduledPublisher) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
	log.Printf("Scheduled publisher started (interval: %v)", p.interval)
}

// Stop gracefully stops the scheduled publisher job
func (p *ScheduledPublisher) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	log.Println("Scheduled publisher stopped")
}

// run is the main loop
func (p *ScheduledPublisher) run() {
	defer p.wg.Done()

	// Run immediately on start (but with a short delay to let services initialize)
	time.Sleep(5 * time.Second)
	p.publishDue()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.publishDue()
		case <-p.stopCh:
			return
		}
	}
}

// publishDue announces every session whose post time has passed
func (p *ScheduledPublisher) publishDue() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	count, err := p.eventService.PublishDueEvents(ctx)
	if err != nil {
		log.Printf("Error publishing scheduled events: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Published %d scheduled event(s)", count)
	}
}

// RunOnce runs the publish pass once (for testing or manual trigger)
func (p *ScheduledPublisher) RunOnce(ctx context.Context) (int, error) {
	return p.eventService.PublishDueEvents(ctx)
}

// IsRunning returns whether the publisher is running
func (p *ScheduledPublisher) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
