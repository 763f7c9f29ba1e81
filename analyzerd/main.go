package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/op/go-logging"

	"github.com/Agence-Glanum/customer-portrait/analyzerd/common"
	"github.com/Agence-Glanum/customer-portrait/database"
	mw "github.com/Agence-Glanum/customer-portrait/middleware"
)

var log = logging.MustGetLogger("log")

func InitLogger(logLevel string) error {
	baseBackend := logging.NewLogBackend(os.Stdout, "", 0)
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05} %{level:.5s}     %{message}`,
	)
	backendFormatter := logging.NewBackendFormatter(baseBackend, format)

	backendLeveled := logging.AddModuleLevel(backendFormatter)
	logLevelCode, err := logging.LogLevel(logLevel)
	if err != nil {
		return err
	}
	backendLeveled.SetLevel(logLevelCode, "")

	// Set the backends to be used.
	logging.SetBackend(backendLeveled)
	return nil
}

func main() {
	config, err := InitConfig()
	if err != nil {
		log.Criticalf("Could not load config: %v", err)
		os.Exit(1)
	}
	if err := InitLogger(config.LogLevel); err != nil {
		log.Criticalf("Could not init logger: %v", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	db, err := database.Open(config.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	loader := database.NewLoader(db)

	input, err := mw.NewConsumer(config.JobsQueue, config.MiddlewareAddress)
	if err != nil {
		log.Fatalf("Failed to create jobs consumer: %v", err)
	}
	output, err := mw.NewProducer(config.ReportsExchange, config.MiddlewareAddress)
	if err != nil {
		log.Fatalf("Failed to create reports producer: %v", err)
	}

	worker := common.NewAnalyzerWorker(input, output, loader.Dataset)

	go func() {
		log.Infof("Starting analyzer worker (queue: %s)", config.JobsQueue)
		worker.Start()
	}()

	sig := <-sigChan
	log.Infof("Received signal: %v. Initiating graceful shutdown...", sig)

	shutdownGracefully(worker, input, output)

	log.Info("Analyzer service shutdown completed.")
}

func shutdownGracefully(worker *common.AnalyzerWorker, input, output mw.MessageMiddleware) {
	shutdownTimeout := 30 * time.Second
	shutdownComplete := make(chan bool, 1)

	go func() {
		log.Info("Stopping analyzer worker...")
		worker.Close()

		log.Info("Closing jobs consumer...")
		if err := input.Close(); err != nil {
			log.Errorf("Error closing jobs consumer: %v", err)
		}

		log.Info("Closing reports producer...")
		if err := output.Close(); err != nil {
			log.Errorf("Error closing reports producer: %v", err)
		}

		shutdownComplete <- true
	}()

	select {
	case <-shutdownComplete:
		log.Info("Graceful shutdown completed successfully.")
	case <-time.After(shutdownTimeout):
		log.Warningf("Graceful shutdown timed out after %v. Forcing exit.", shutdownTimeout)
	}
}
