// Package jobs implements background job processing for the Reginald bot.
//
// The jobs package contains scheduled tasks that run independently of HTTP
// request handling.
//
// # Job Types
//
// Available background jobs:
//
//   - ScheduledPublisher: Announces events whose post time has arrived
//   - ReminderProcessor: Day-before reminders to enrolled players
//
// # Lifecycle
//
// Each job owns a goroutine guarded by Start/Stop:
//
//	publisher := jobs.NewScheduledPublisher(eventService, time.Minute)
//	publisher.Start()
//	defer publisher.Stop()
//
// # Error Handling
//
// Jobs log errors but don't crash the application. The same work is also
// exposed through the cron task endpoints for externally driven schedules.
package jobs
