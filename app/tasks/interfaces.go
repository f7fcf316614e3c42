package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the HTTP API to manage background task
// processing.
// Example usage:
//
//	scheduler := NewScheduler(configCache, sourceRepo, postRepo, httpClient, sitemapParser, feedParser, extractor, engine)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueExtractPostsTask()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueExtractPostsTask() error
}
