package tasks

import (
	"context"
	"fmt"
	"time"

	"chatbooking/config"
	"chatbooking/services/booking"
	"chatbooking/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeBookingSweep = "booking:sweep"

// SweepWorker periodically cancels PENDING bookings whose conversation
// never confirmed them, releasing their slot windows. It is the safety net
// for abandoned chats and for orphaned rows a failed compensation left
// behind. The schedule runs through asynq so a multi-instance deployment
// executes each sweep exactly once.
type SweepWorker struct {
	Bookings booking.BookingService
	MaxAge   time.Duration
	Interval time.Duration

	server    *asynq.Server
	scheduler *asynq.Scheduler
}

func NewSweepWorker(bookings booking.BookingService, maxAge, interval time.Duration) *SweepWorker {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	server := asynq.NewServer(redisOpts, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{"default": 1},
	})
	scheduler := asynq.NewScheduler(redisOpts, nil)

	return &SweepWorker{
		Bookings:  bookings,
		MaxAge:    maxAge,
		Interval:  interval,
		server:    server,
		scheduler: scheduler,
	}
}

// Start registers the periodic sweep task and runs the worker in the
// background.
func (w *SweepWorker) Start() error {
	spec := fmt.Sprintf("@every %s", w.Interval)
	if _, err := w.scheduler.Register(spec, asynq.NewTask(TypeBookingSweep, nil)); err != nil {
		return fmt.Errorf("failed to register booking sweep: %w", err)
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingSweep, w.handleSweep)

	if err := w.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start sweep worker: %w", err)
	}
	if err := w.scheduler.Start(); err != nil {
		w.server.Shutdown()
		return fmt.Errorf("failed to start sweep scheduler: %w", err)
	}
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (w *SweepWorker) Stop() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}

func (w *SweepWorker) handleSweep(ctx context.Context, _ *asynq.Task) error {
	reclaimed, err := w.Bookings.SweepExpiredPending(ctx, w.MaxAge)
	if err != nil {
		utils.GetLogger().Error("pending booking sweep failed", zap.Error(err))
		return err
	}
	if reclaimed > 0 {
		utils.GetLogger().Info("reclaimed expired pending bookings", zap.Int("count", reclaimed))
	}
	return nil
}
