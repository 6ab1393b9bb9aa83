package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/septivank/rental-billing-worker/internal/billing"
	"github.com/septivank/rental-billing-worker/internal/config"
	"github.com/septivank/rental-billing-worker/internal/domain"
	"github.com/septivank/rental-billing-worker/internal/ledger"
	"github.com/septivank/rental-billing-worker/internal/logging"
	"github.com/septivank/rental-billing-worker/internal/metrics"
	"github.com/septivank/rental-billing-worker/internal/mq"
	"go.uber.org/zap"
)

// Billing command types.
const (
	CommandStageReading   = "reading.stage"
	CommandDiscardReading = "reading.discard"
	CommandCreateInvoice  = "invoice.create"
	CommandBulkInvoice    = "invoice.bulk"
)

// Command is the incoming billing command envelope. Month and year are
// left untyped because legacy senders deliver them as strings; they
// are normalized through domain.ParsePeriod.
type Command struct {
	Type        string      `json:"type"`
	RequestID   string      `json:"request_id"`
	RoomID      string      `json:"room_id,omitempty"`
	Month       interface{} `json:"month,omitempty"`
	Year        interface{} `json:"year,omitempty"`
	Electricity *int64      `json:"electricity,omitempty"`
	Water       *int64      `json:"water,omitempty"`
}

// EventPublisher publishes billing events after a successful commit.
type EventPublisher interface {
	PublishInvoiceCreated(ctx context.Context, event mq.InvoiceCreatedEvent, routingKey string) error
}

// ProcessorService dispatches billing commands to the meter ledger and
// the invoice generators.
type ProcessorService struct {
	ledger      *ledger.Ledger
	generator   *billing.Generator
	coordinator *billing.Coordinator
	publisher   EventPublisher
	cfg         *config.Config
	logger      *zap.Logger
}

// NewProcessorService creates a new processor service
func NewProcessorService(
	meterLedger *ledger.Ledger,
	generator *billing.Generator,
	coordinator *billing.Coordinator,
	publisher EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *ProcessorService {
	return &ProcessorService{
		ledger:      meterLedger,
		generator:   generator,
		coordinator: coordinator,
		publisher:   publisher,
		cfg:         cfg,
		logger:      logger,
	}
}

// ProcessCommand processes one incoming billing command. A returned
// error sends the delivery to the DLQ; failed commits leave nothing
// behind, so redelivering a command is always safe.
func (s *ProcessorService) ProcessCommand(ctx context.Context, body []byte) error {
	var cmd Command
	if err := json.Unmarshal(body, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal command: %w", err)
	}

	reqLogger := logging.WithRequestID(s.logger, cmd.RequestID)
	reqLogger.Info("processing command", zap.String("type", cmd.Type))

	start := time.Now()
	err := s.dispatch(ctx, cmd, reqLogger)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveCommand(cmd.Type, result, time.Since(start))

	if err != nil {
		reqLogger.Error("command failed", zap.String("type", cmd.Type), zap.Error(err))
		return err
	}

	reqLogger.Info("command processed successfully", zap.String("type", cmd.Type))
	return nil
}

func (s *ProcessorService) dispatch(ctx context.Context, cmd Command, logger *zap.Logger) error {
	switch cmd.Type {
	case CommandStageReading:
		return s.handleStageReading(ctx, cmd)
	case CommandDiscardReading:
		return s.handleDiscardReading(ctx, cmd)
	case CommandCreateInvoice:
		return s.handleCreateInvoice(ctx, cmd, logger)
	case CommandBulkInvoice:
		return s.handleBulkInvoice(ctx, cmd, logger)
	default:
		return fmt.Errorf("unknown command type %q", cmd.Type)
	}
}

func (s *ProcessorService) handleStageReading(ctx context.Context, cmd Command) error {
	roomID, err := uuid.Parse(cmd.RoomID)
	if err != nil {
		return fmt.Errorf("invalid room id %q: %w", cmd.RoomID, err)
	}
	if cmd.Electricity == nil || cmd.Water == nil {
		return fmt.Errorf("stage reading requires both electricity and water values")
	}

	return s.ledger.StageReading(ctx, roomID, domain.MeterReading{
		Electricity: *cmd.Electricity,
		Water:       *cmd.Water,
	})
}

func (s *ProcessorService) handleDiscardReading(ctx context.Context, cmd Command) error {
	roomID, err := uuid.Parse(cmd.RoomID)
	if err != nil {
		return fmt.Errorf("invalid room id %q: %w", cmd.RoomID, err)
	}
	return s.ledger.DiscardStaged(ctx, roomID)
}

func (s *ProcessorService) handleCreateInvoice(ctx context.Context, cmd Command, logger *zap.Logger) error {
	roomID, err := uuid.Parse(cmd.RoomID)
	if err != nil {
		return fmt.Errorf("invalid room id %q: %w", cmd.RoomID, err)
	}
	period, err := domain.ParsePeriod(cmd.Month, cmd.Year)
	if err != nil {
		return err
	}

	// Ad-hoc single-room billing may carry explicit new readings.
	var override *domain.MeterReading
	if cmd.Electricity != nil && cmd.Water != nil {
		override = &domain.MeterReading{
			Electricity: *cmd.Electricity,
			Water:       *cmd.Water,
		}
	}

	invoice, err := s.generator.CreateInvoice(ctx, roomID, period, override)
	if err != nil {
		return err
	}

	metrics.AddInvoicesCreated(metrics.ModeSingle, 1)
	s.publishInvoiceCreated(ctx, invoice, metrics.ModeSingle, logger)
	return nil
}

func (s *ProcessorService) handleBulkInvoice(ctx context.Context, cmd Command, logger *zap.Logger) error {
	period, err := domain.ParsePeriod(cmd.Month, cmd.Year)
	if err != nil {
		return err
	}

	result, err := s.coordinator.BillAllOccupied(ctx, period)
	if err != nil {
		return err
	}

	metrics.AddInvoicesCreated(metrics.ModeBulk, result.Count)
	for _, invoice := range result.Invoices {
		s.publishInvoiceCreated(ctx, invoice, metrics.ModeBulk, logger)
	}
	return nil
}

// publishInvoiceCreated publishes after the commit; a publish failure
// is logged, never propagated, because the invoice already exists.
func (s *ProcessorService) publishInvoiceCreated(ctx context.Context, invoice domain.Invoice, mode string, logger *zap.Logger) {
	event := mq.InvoiceCreatedEvent{
		InvoiceID: invoice.ID.String(),
		RoomID:    invoice.RoomID.String(),
		RoomName:  invoice.RoomName,
		Month:     invoice.Period.Month,
		Year:      invoice.Period.Year,
		Total:     invoice.Total,
		Mode:      mode,
		CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
	}

	if err := s.publisher.PublishInvoiceCreated(ctx, event, s.cfg.RabbitMQ.InvoiceCreatedRoutingKey); err != nil {
		logger.Error("failed to publish invoice created event",
			zap.Error(err),
			zap.String("invoice_id", event.InvoiceID),
			zap.String("room", event.RoomName),
		)
	}
}
