package queue

import (
	"context"
	"encoding/json"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rabbitmq/amqp091-go"

	"github.com/archivelab/vault/internal/util"
	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/graph"
	"github.com/archivelab/vault/pkg/logger"
)

// IngestJob is the payload of one ingest message: a document and its
// raw page texts.
type IngestJob struct {
	CorrelationID string          `json:"correlation_id"`
	Document      common.Document `json:"document"`
	Pages         []string        `json:"pages"`
}

// PublishIngest enqueues an ingest job for one document, stamping it
// with a fresh correlation ID.
func PublishIngest(ch *amqp091.Channel, doc common.Document, pages []string) (string, error) {
	correlationID, err := gonanoid.New()
	if err != nil {
		return "", err
	}

	job := IngestJob{
		CorrelationID: correlationID,
		Document:      doc,
		Pages:         pages,
	}
	data, err := json.Marshal(job)
	if err != nil {
		return "", err
	}

	// Broker hiccups on publish are transient; a couple of attempts
	// beat losing the job at the door.
	if err := util.RetryErr(3, func() error {
		return publish(ch, IngestQueue, data, nil)
	}); err != nil {
		return "", err
	}
	logger.Debug("[Queue] Ingest job published", "correlation_id", correlationID, "filename", doc.Filename)
	return correlationID, nil
}

// ConsumeIngest processes ingest jobs until ctx is done. Failed jobs
// go to the retry queue until their attempts run out, then to the DLQ;
// malformed payloads go straight to the DLQ.
func ConsumeIngest(ctx context.Context, ch *amqp091.Channel, pipeline *graph.Pipeline) error {
	deliveries, err := ch.Consume(
		IngestQueue,
		"",    // consumer
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			handleIngest(ctx, ch, pipeline, delivery)
		}
	}
}

func handleIngest(ctx context.Context, ch *amqp091.Channel, pipeline *graph.Pipeline, delivery amqp091.Delivery) {
	var job IngestJob
	if err := json.Unmarshal(delivery.Body, &job); err != nil {
		logger.Error("[Queue] Malformed ingest job", "err", err)
		deadLetter(ch, delivery)
		return
	}

	report, err := pipeline.ProcessDocument(ctx, job.Document, job.Pages)
	if err != nil {
		attempts := retryCount(delivery.Headers) + 1
		logger.Warn("[Queue] Ingest job failed",
			"correlation_id", job.CorrelationID,
			"filename", job.Document.Filename,
			"attempt", attempts,
			"err", err)

		if attempts >= maxRetries {
			deadLetter(ch, delivery)
			return
		}
		requeue(ch, delivery, attempts)
		return
	}

	logger.Info("[Queue] Ingest job done",
		"correlation_id", job.CorrelationID,
		"filename", job.Document.Filename,
		"pages", report.Pages,
		"entities", report.Entities,
		"failed_items", len(report.Failed))
	if err := delivery.Ack(false); err != nil {
		logger.Warn("[Queue] Ack failed", "correlation_id", job.CorrelationID, "err", err)
	}
}

func requeue(ch *amqp091.Channel, delivery amqp091.Delivery, attempts int) {
	headers := amqp091.Table{"x-retry-count": int32(attempts)}
	if err := publish(ch, IngestQueue+"_retry", delivery.Body, headers); err != nil {
		logger.Error("[Queue] Retry publish failed", "err", err)
		_ = delivery.Nack(false, true)
		return
	}
	_ = delivery.Ack(false)
}

func deadLetter(ch *amqp091.Channel, delivery amqp091.Delivery) {
	if err := publish(ch, IngestQueue+"_dlq", delivery.Body, delivery.Headers); err != nil {
		logger.Error("[Queue] DLQ publish failed", "err", err)
		_ = delivery.Nack(false, false)
		return
	}
	_ = delivery.Ack(false)
}
