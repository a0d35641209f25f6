package main

import (
	"context"
	"time"

	"github.com/intrafeed/intrafeed/config"
	"github.com/intrafeed/intrafeed/graph"
	"github.com/intrafeed/intrafeed/metrics"
	"github.com/intrafeed/intrafeed/models"
	"github.com/intrafeed/intrafeed/notify"
	"github.com/intrafeed/intrafeed/routes"
	"github.com/intrafeed/intrafeed/services"
	"github.com/intrafeed/intrafeed/storage"
	"github.com/intrafeed/intrafeed/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync()

	db := config.InitDatabase(models.All()...)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelBoot()

	store, err := storage.New(bootCtx, cfg)
	if err != nil {
		utils.Sugar.Fatalf("storage init failed: %v", err)
	}

	var hooks []utils.ShutdownHook
	dispatchers := notify.Multi{notify.NewLog(utils.Logger)}
	if utils.SMTPConfigured() {
		dispatchers = append(dispatchers, notify.NewMail(utils.SendMail, cfg.FrontendURL))
	}
	if cfg.NATSURL != "" {
		publisher, nc, err := notify.ConnectNATS(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			utils.Sugar.Warnf("nats unavailable, approval events disabled: %v", err)
		} else {
			dispatchers = append(dispatchers, publisher)
			hooks = append(hooks, func(context.Context) error { return nc.Drain() })
		}
	}
	deps := routes.Dependencies{DB: db}
	if cfg.MongoURI != "" {
		inbox, mc, err := notify.ConnectInbox(bootCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			utils.Sugar.Warnf("mongo unavailable, notification inbox disabled: %v", err)
		} else {
			dispatchers = append(dispatchers, inbox)
			deps.Inbox = inbox
			hooks = append(hooks, mc.Disconnect)
		}
	}

	deps.Posts = services.NewPostService(db, store, dispatchers)
	deps.Users = services.NewUserService(db, cfg.IsAdminEmail)
	deps.Feed = services.NewFeedService(db, cfg.FeedPageSize, cfg.FeedRecentCount)
	deps.Uploads = services.NewUploadService(db, store, cfg.UploadMaxMB)
	deps.Stats = services.NewStatsService(db)
	deps.Graph = graph.NewClient(cfg.GraphBaseURL)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	deps.Uploads.StartCleaner(bgCtx, 5*time.Minute, 24*time.Hour)
	collector := &metrics.Collector{DB: db, Logger: utils.Logger, Interval: time.Minute}
	go collector.Run(bgCtx)

	r := routes.SetupRouter(deps)

	hooks = append([]utils.ShutdownHook{
		func(context.Context) error {
			stopBackground()
			deps.Posts.Wait()
			return nil
		},
		func(context.Context) error { return deps.Graph.Close() },
	}, hooks...)
	hooks = append(hooks,
		func(context.Context) error { return utils.CloseRedis() },
		func(context.Context) error { return config.CloseDatabase() },
	)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r, hooks...); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
