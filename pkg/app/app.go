package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"diskregistry/pkg/server"

	"golang.org/x/sync/errgroup"
)

type App struct {
	name    string
	servers []server.Server
}

type Option func(a *App)

func NewApp(opts ...Option) *App {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func WithServer(servers ...server.Server) Option {
	return func(a *App) {
		a.servers = servers
	}
}

func WithName(name string) Option {
	return func(a *App) {
		a.name = name
	}
}

// Run 按注册顺序启动所有 server，收到退出信号或任一 server 启动失败后逆序停止
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	eg, egCtx := errgroup.WithContext(ctx)
	for _, srv := range a.servers {
		srv := srv
		eg.Go(func() error {
			if err := srv.Start(egCtx); err != nil {
				log.Printf("server start err: %v", err)
				return err
			}
			return nil
		})
	}

	select {
	case <-signals:
		log.Println("received termination signal")
	case <-egCtx.Done():
		log.Println("context canceled")
	}

	stopCtx := context.WithoutCancel(ctx)
	for i := len(a.servers) - 1; i >= 0; i-- {
		if err := a.servers[i].Stop(stopCtx); err != nil {
			log.Printf("server stop err: %v", err)
		}
	}
	cancel()
	if err := eg.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
