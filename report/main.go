package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/op/go-logging"
	"github.com/schollz/progressbar/v3"

	"github.com/Agence-Glanum/customer-portrait/database"
	"github.com/Agence-Glanum/customer-portrait/models"
	"github.com/Agence-Glanum/customer-portrait/pipeline"
	"github.com/Agence-Glanum/customer-portrait/protocol"
)

var log = logging.MustGetLogger("log")

const dateLayout = "2006-01-02"

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

	family, err := models.ParseFamily(config.Family)
	if err != nil {
		log.Fatalf("Bad family: %v", err)
	}
	start, end, err := parseWindow(config.SnapshotStart, config.SnapshotEnd)
	if err != nil {
		log.Fatalf("Bad snapshot window: %v", err)
	}

	db, err := database.Open(config.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	loader := database.NewLoader(db)

	ctx := context.Background()
	ds, err := loadDataset(ctx, loader, family, start, end)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	report, err := pipeline.Run(ds, pipeline.Params{
		Family:      config.Family,
		SnapshotEnd: end,
		Strategy:    config.Strategy,
		Clusters:    config.Clusters,
		Metric:      config.Metric,
	})
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	if err := writeReport(config.OutputPath, report); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	log.Infof("Report written to %s", config.OutputPath)
}

// loadDataset fetches the four input tables, reporting progress per table.
func loadDataset(ctx context.Context, loader *database.Loader, family models.Family, start, end time.Time) (models.Dataset, error) {
	bar := progressbar.Default(4, "loading tables")
	var ds models.Dataset
	var err error

	if ds.Headers, err = loader.Headers(ctx, family, start, end); err != nil {
		return models.Dataset{}, err
	}
	bar.Add(1)
	if ds.Lines, err = loader.Lines(ctx, family); err != nil {
		return models.Dataset{}, err
	}
	bar.Add(1)
	if ds.Products, err = loader.Products(ctx); err != nil {
		return models.Dataset{}, err
	}
	bar.Add(1)
	if ds.Categories, err = loader.Categories(ctx); err != nil {
		return models.Dataset{}, err
	}
	bar.Add(1)
	return ds, nil
}

func parseWindow(startStr, endStr string) (start, end time.Time, err error) {
	if startStr != "" {
		if start, err = time.Parse(dateLayout, startStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endStr != "" {
		if end, err = time.Parse(dateLayout, endStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now().UTC().Truncate(24 * time.Hour)
	}
	return start, end, nil
}

func writeReport(path string, report *pipeline.Report) error {
	tables := protocol.ReportTables("", report)
	out := make(map[string]*protocol.TableBatch, len(tables))
	for _, t := range tables {
		out[t.Name] = t
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
