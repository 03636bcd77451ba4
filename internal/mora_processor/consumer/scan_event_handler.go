package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/savings-group-ledger/internal/domain/shared"
	"github.com/savings-group-ledger/internal/mora_processor/service"
	"github.com/savings-group-ledger/internal/platform/messaging/producers"
)

// ScanEventHandler handles incoming scan request messages from Kafka
type ScanEventHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewScanEventHandler creates a new handler
func NewScanEventHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *ScanEventHandler {
	return &ScanEventHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes Kafka messages
func (h *ScanEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.ScanRequest
	if err := json.Unmarshal(value, &request); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal scan request from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received scan request for processing",
		"scan_id", request.ScanID.String(),
		"group_id", request.GroupID.String(),
		"as_of", request.AsOf,
	)

	if err := h.processingService.ProcessScan(ctx, &request); err != nil {
		logger.Error("Failed to process scan",
			"scan_id", request.ScanID.String(),
			"group_id", request.GroupID.String(),
			"error", err,
		)
		return fmt.Errorf("processing scan %s failed: %w", request.ScanID.String(), err)
	}

	logger.Info("Successfully processed scan", "scan_id", request.ScanID.String())
	return nil // Success, commit offset
}
