// Package scheduler provides named periodic tasks with a no-self-overlap guarantee.
//
// # Overview
//
// Two scheduling modes cover the service's needs: fixed-delay interval tasks
// (Every) for the aggregation cycle and simulator timers, and cron-style
// schedules (Cron) for the daily retention cleanup. A task never runs
// concurrently with itself; an overrunning invocation delays the next one
// rather than skipping it or queuing up. Distinct tasks are independent and
// may run concurrently with each other.
//
// # Usage Example
//
//	s := scheduler.New(logger)
//	s.Every("metrics", 10*time.Second, 5*time.Second, engine.RunCycle)
//	s.Cron("retention", "0 2 * * *", engine.RetentionCleanup)
//	s.Start()
//	defer s.Stop(ctx)
//
// Task errors are logged with the task name and never terminate the
// scheduler or the process.
package scheduler
