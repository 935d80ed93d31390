package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdout/souq/configs"
	"github.com/abdout/souq/middlewares"
	"github.com/abdout/souq/pkg/blob"
	"github.com/abdout/souq/pkg/gateway"
	"github.com/abdout/souq/pkg/notify"
	"github.com/abdout/souq/routes"
	"github.com/abdout/souq/store"
	"github.com/abdout/souq/ws"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var skipSeed bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the API server which provides:
- storefront, merchant and admin REST endpoints
- order tracking over websocket at /ws/orders/:id
- merchant order events over MQTT when mqtt.broker is set`,
	RunE: runServer,
}

func init() {
	serveCmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "do not seed admin and categories on start")
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer closeDB(db)

	if err := configs.Migrate(db); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	if !skipSeed {
		if err := configs.SeedAdmin(db, cfg.Admin, log); err != nil {
			return fmt.Errorf("seed admin failed: %w", err)
		}
		if err := configs.SeedCategories(db, log); err != nil {
			return fmt.Errorf("seed categories failed: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis (cart)
	redisClient := store.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, cart requests will fail until it is back", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	// Notifications: mail(log) + websocket + mqtt (ถ้าตั้งค่า)
	hub := ws.NewOrderHub(log.Named("ws"))
	go hub.Run(ctx)
	sinks := []notify.Sink{notify.MailSink{Mailer: notify.LogMailer{Logger: log.Named("mail")}}, hub}
	if cfg.MQTT.Broker != "" {
		mq, err := notify.NewMQTTClient(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Username, cfg.MQTT.Password)
		if err != nil {
			log.Warn("mqtt disabled", zap.String("broker", cfg.MQTT.Broker), zap.Error(err))
		} else {
			defer mq.Close()
			sinks = append(sinks, notify.MQTTSink{Pub: mq, Prefix: cfg.MQTT.TopicPrefix})
			log.Info("mqtt connected", zap.String("broker", cfg.MQTT.Broker))
		}
	}
	dispatcher := notify.NewDispatcher(log.Named("notify"), cfg.Notify.Delay, sinks...)

	if cfg.Stripe.SecretKey == "" {
		log.Warn("stripe.secret_key is empty, onboarding and checkout calls will be rejected by the gateway")
	}

	// HTTP
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(log.Named("http")))
	r.Static(cfg.Blob.BaseURL, cfg.Blob.Dir)

	routes.RegisterRoutes(r, routes.Deps{
		DB:       db,
		Cfg:      cfg,
		Log:      log,
		KV:       store.NewRedisKV(redisClient),
		Gateway:  gateway.NewStripeClient(cfg.Stripe.BaseURL, cfg.Stripe.SecretKey, log.Named("stripe")),
		Notifier: dispatcher,
		Blob:     blob.NewDiskStore(cfg.Blob.Dir, cfg.Blob.BaseURL),
		Hub:      hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	// รอ notification ที่ค้างอยู่
	dispatcher.Wait()
	return nil
}
