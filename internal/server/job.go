package server

import (
	"context"
	"errors"
	"time"

	"diskregistry/internal/registry"
	"diskregistry/pkg/log"

	"github.com/go-co-op/gocron"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultTickInterval    = time.Second
	defaultCleanupInterval = time.Minute
)

// RegistryJobs 定时任务驱动的 registry 操作
type RegistryJobs interface {
	Tick(ctx context.Context) error
	CleanupDisks(ctx context.Context) ([]string, error)
}

type JobServer struct {
	log             *log.Logger
	jobs            RegistryJobs
	scheduler       *gocron.Scheduler
	tickInterval    time.Duration
	cleanupInterval time.Duration
}

func NewJobServer(
	log *log.Logger,
	conf *viper.Viper,
	diskRegistry *registry.Registry,
) *JobServer {
	return newJobServer(log, conf, diskRegistry)
}

func newJobServer(log *log.Logger, conf *viper.Viper, jobs RegistryJobs) *JobServer {
	tick := conf.GetDuration("job.tick_interval")
	if tick <= 0 {
		tick = defaultTickInterval
	}
	cleanup := conf.GetDuration("job.cleanup_interval")
	if cleanup <= 0 {
		cleanup = defaultCleanupInterval
	}
	return &JobServer{
		log:             log,
		jobs:            jobs,
		scheduler:       gocron.NewScheduler(time.UTC),
		tickInterval:    tick,
		cleanupInterval: cleanup,
	}
}

func (j *JobServer) Start(ctx context.Context) error {
	gocron.SetPanicHandler(func(jobName string, recoverData interface{}) {
		j.log.Error("JobServer Panic", zap.String("job", jobName), zap.Any("recover", recoverData))
	})

	if _, err := j.scheduler.Every(j.tickInterval).SingletonMode().Name("registry-tick").Do(j.tick, ctx); err != nil {
		j.log.Error("schedule tick job error", zap.Error(err))
		return err
	}
	// 首次清理推迟一个周期，避免与启动时的状态加载竞争
	if _, err := j.scheduler.Every(j.cleanupInterval).WaitForSchedule().SingletonMode().Name("registry-cleanup").Do(j.cleanup, ctx); err != nil {
		j.log.Error("schedule cleanup job error", zap.Error(err))
		return err
	}

	j.log.Info("starting job server",
		zap.Duration("tick_interval", j.tickInterval),
		zap.Duration("cleanup_interval", j.cleanupInterval))
	j.scheduler.StartAsync()
	<-ctx.Done()
	return nil
}

func (j *JobServer) Stop(ctx context.Context) error {
	j.scheduler.Stop()
	j.log.Info("JobServer stop...")
	return nil
}

func (j *JobServer) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.tickInterval*10)
	defer cancel()
	if err := j.jobs.Tick(ctx); err != nil && !errors.Is(err, registry.ErrRejected) {
		j.log.Warn("registry tick failed", zap.Error(err))
	}
}

func (j *JobServer) cleanup(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.cleanupInterval)
	defer cancel()
	removed, err := j.jobs.CleanupDisks(ctx)
	if err != nil {
		if !errors.Is(err, registry.ErrRejected) {
			j.log.Warn("cleanup disks failed", zap.Error(err))
		}
		return
	}
	if len(removed) > 0 {
		j.log.Info("cleanup disks done", zap.Strings("disk_ids", removed))
	}
}
