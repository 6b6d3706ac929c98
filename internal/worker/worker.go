package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/config"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/events"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/pipeline"
)

// Worker consumes sync.requested events and runs the pipeline for them.
type Worker struct {
	config   *config.Config
	logger   *logger.Logger
	reader   *kafka.Reader
	pipeline *pipeline.Pipeline
	done     chan struct{}
}

func New(cfg *config.Config, logger *logger.Logger, p *pipeline.Pipeline) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "catalog-sync-worker",
		Topic:          events.Topic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config:   cfg,
		logger:   logger,
		reader:   reader,
		pipeline: p,
		done:     make(chan struct{}),
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for sync requests...")

	for {
		select {
		case <-w.done:
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		var event events.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("Failed to parse event: %v", err)
			continue
		}

		if event.Type != events.TypeSyncRequested {
			continue
		}

		if err := w.handle(event); err != nil {
			w.logger.Error("Sync run failed: %v", err)
			continue
		}

		w.logger.Debug("Sync request processed")
	}
}

func (w *Worker) handle(event events.Event) error {
	ctx := context.Background()
	opts := pipeline.ExtractOptions{
		SaveRaw: boolField(event.Data, "save_raw"),
		Flush:   boolField(event.Data, "flush"),
	}

	w.logger.Info("Running %s sync", event.Phase)
	switch event.Phase {
	case "extract":
		_, err := w.pipeline.Extract(ctx, opts)
		return err
	case "insert":
		_, err := w.pipeline.Insert(ctx)
		return err
	default:
		return w.pipeline.Run(ctx, opts)
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.done)
	w.reader.Close()
}

func boolField(data map[string]interface{}, key string) bool {
	value, ok := data[key].(bool)
	return ok && value
}
