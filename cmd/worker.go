package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal/metrics"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transaction"
	txpg "github.com/mohamedahmedessam757/futurethinking-backend/internal/transaction/postgres"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/user"
	userpg "github.com/mohamedahmedessam757/futurethinking-backend/internal/user/postgres"
	"github.com/mohamedahmedessam757/futurethinking-backend/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start scheduled maintenance jobs",
	Long:  `Run the cron worker: sweep stale pending transactions to failed and downgrade lapsed subscriptions.`,
	Run: func(cmd *cobra.Command, args []string) {
		startWorker()
	},
}

func startWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open gorm over db connection: %v\n", err)
		os.Exit(1)
	}

	txService := transaction.NewService(txpg.NewTransactionRepository(gormDB), log)
	userService := user.NewService(userpg.NewUserRepository(gormDB), log)

	c := cron.New()

	pendingTTL := config.Worker.PendingTransactionTTL
	if _, err := c.AddFunc(config.Worker.ExpireSchedule, func() {
		count, err := txService.ExpirePending(pendingTTL)
		if err != nil {
			log.Error("pending transaction sweep failed", "error", err)
			return
		}
		if count > 0 {
			metrics.ExpiredTransactionsTotal.Add(float64(count))
			log.Info("stale pending transactions expired", "count", count, "ttl", pendingTTL)
		}
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid expire schedule %q: %v\n", config.Worker.ExpireSchedule, err)
		os.Exit(1)
	}

	if _, err := c.AddFunc(config.Worker.SubscriptionSchedule, func() {
		if _, err := userService.SweepExpiredSubscriptions(); err != nil {
			log.Error("subscription sweep failed", "error", err)
		}
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid subscription schedule %q: %v\n", config.Worker.SubscriptionSchedule, err)
		os.Exit(1)
	}

	metrics.Init()
	c.Start()

	log.Info("worker started",
		"expire_schedule", config.Worker.ExpireSchedule,
		"subscription_schedule", config.Worker.SubscriptionSchedule,
		"pending_ttl", pendingTTL)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("received signal, shutting down worker", "signal", sig)

	ctx := c.Stop()
	<-ctx.Done()

	if err := db.Close(); err != nil {
		log.Error("database close error", "error", err)
	}
	log.Info("worker shutdown complete")
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
