package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func CreateGracefulShutdownChannel() chan os.Signal {
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGTERM, syscall.SIGINT)

	return gracefulShutdown
}

// ListenForShutdown blocks until SIGINT/SIGTERM arrives or ctx is done, then runs
// signalHandler, waits timeToWait for in-flight work and closes done.
func ListenForShutdown(
	ctx context.Context,
	signalChan chan os.Signal,
	done chan bool,
	signalHandler func(),
	timeToWait time.Duration,
	l *zap.Logger,
) {
	defer close(done)

	select {
	case sig := <-signalChan:
		if sig != syscall.SIGTERM && sig != syscall.SIGINT {
			return
		}
		l.Sugar().Infof("caught signal %v", sig)
	case <-ctx.Done():
		l.Sugar().Debugw("Work finished, shutting down")
	}

	signalHandler()

	if timeToWait > 0 {
		l.Sugar().Infof("Waiting %v seconds to exit...", timeToWait.Seconds())
		time.Sleep(timeToWait)
	}
	l.Sugar().Infof("Exiting")
}
