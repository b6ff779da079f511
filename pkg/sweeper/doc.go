// Package sweeper removes sessions that have been idle longer than the
// core.user.session_max_time setting, on a cron schedule.
//
//	s, err := sweeper.New(database, "@every 10m", sweeper.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	app := mvc.New(mvc.WithStartupHook(s.StartFunc()), mvc.WithShutdownHook(s.Shutdown()))
//
// Schedules use the five field cron format or a descriptor such as "@hourly"
// or "@every 5m".
package sweeper
