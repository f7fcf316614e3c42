package api

import (
	"github.com/rpgmp3/rpgstats/app/database"
	"github.com/rpgmp3/rpgstats/app/source"
	"github.com/rpgmp3/rpgstats/app/tasks"
)

type Handler struct {
	postRepo    database.PostRepository
	sourceRepo  database.SourceRepository
	statsRepo   database.StatsRepository
	configCache *source.ConfigCache
	scheduler   tasks.TaskSchedulerInterface
}
