package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"astromon/client"
	"astromon/logger"
	"astromon/monitoring"
	"astromon/survival"
)

func main() {
	baseURL := flag.String("base_url", "http://localhost:8000", "prediction service base URL")
	dataset := flag.String("dataset", "./data/training_data.json", "bundled training dataset")
	interval := flag.Duration("interval", 5*time.Second, "status poll interval")
	webhook := flag.String("webhook", "", "alert webhook URL (optional)")
	logLevel := flag.String("log_level", "info", "log level")
	flag.Parse()

	if err := logger.Init(*logLevel, ""); err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	monitor := client.New(client.Config{
		BaseURL:     *baseURL,
		DatasetPath: *dataset,
	})
	alerts := monitoring.NewAlertSystem(*webhook, time.Minute)

	monitor.OnStatusUpdated(func(verdict survival.Verdict) {
		zap.S().Infow("verdict received",
			"status", verdict.Status,
			"confidence", verdict.Confidence,
			"risk_level", verdict.RiskLevel,
		)
	})
	monitor.OnCriticalAlert(func(verdict survival.Verdict) {
		alerts.RaiseVerdict(verdict)
	})
	monitor.OnTrainingComplete(func(outcome survival.TrainingOutcome) {
		zap.S().Infow("training complete",
			"samples", outcome.Stats.Samples,
			"accuracy", outcome.ModelAccuracy,
		)
	})

	// nominal habitat baseline; game logic overwrites these per tick
	monitor.UpdateSensorField("oxygen", 20.9)
	monitor.UpdateSensorField("co2", 0.04)
	monitor.UpdateSensorField("temperature", 22.0)
	monitor.UpdateSensorField("humidity", 50.0)
	monitor.UpdateSensorField("radiation", 0.05)
	monitor.UpdateSensorField("food_supply_days", 90)
	monitor.UpdateSensorField("water_supply_days", 60)

	monitor.CheckHealth()
	monitor.Wait()
	if !monitor.Trained() {
		zap.S().Info("service untrained, uploading bundled dataset")
		monitor.TrainFromBundledFile()
		monitor.Wait()
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	healthTicker := time.NewTicker(10 * *interval)
	defer healthTicker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			monitor.CheckStatus(monitor.Reading())
		case <-healthTicker.C:
			monitor.CheckHealth()
		case <-quit:
			monitor.Wait()
			zap.S().Info("monitor stopped")
			return
		}
	}
}
