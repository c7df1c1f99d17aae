// =============================================================================
// Sales Batch Processor - Orchestrating Processor
// =============================================================================
//
// This module turns the text of one batch document into exactly one output
// document:
//   - A Result when the batch could be processed, even if every transaction
//     was rejected.
//   - A Failure when the text is not JSON ("JSON parsing failed") or anything
//     else went wrong ("Processing failed").
//
// PROCESSING STEPS:
//   1. Check the text is a JSON document.
//   2. Decode the envelope: batch_id, generated_at, transactions.
//   3. Validate each transaction in input order, collecting the valid subset
//      and the first MaxValidationErrors rejection records.
//   4. Aggregate and scan the valid subset for anomalies.
//   5. Assemble the Result with timing and metadata.
//
// CONCURRENCY:
//   Counters are created per call and returned in the Outcome. A Processor
//   holds only immutable settings, so one instance may serve many goroutines.
//
// =============================================================================

package processor

import (
	"bytes"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-batch-processor/internal/analytics"
	"github.com/ginjaninja78/sales-batch-processor/internal/anomaly"
	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/internal/logging"
	"github.com/ginjaninja78/sales-batch-processor/internal/types"
	"github.com/ginjaninja78/sales-batch-processor/internal/validation"
)

// MaxValidationErrors caps the rejection records listed in a Result.
const MaxValidationErrors = 50

// TimestampLayout is the format of processed_at: UTC with microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// =============================================================================
// OUTCOME
// =============================================================================

// Counters tracks the transactions seen by one Process call.
type Counters struct {
	TotalTransactions   int `json:"total_transactions" yaml:"total_transactions"`
	ValidTransactions   int `json:"valid_transactions" yaml:"valid_transactions"`
	InvalidTransactions int `json:"invalid_transactions" yaml:"invalid_transactions"`
	ProcessingErrors    int `json:"processing_errors" yaml:"processing_errors"`
}

// Outcome is the return value of Process. Exactly one of Result and Failure
// is set.
type Outcome struct {
	Result   *types.Result
	Failure  *types.Failure
	Counters Counters
}

// OK reports whether the batch produced a Result.
func (o Outcome) OK() bool {
	return o.Result != nil
}

// Document returns whichever document is set.
func (o Outcome) Document() types.Document {
	if o.Result != nil {
		return o.Result
	}
	return o.Failure
}

// MarshalJSON emits the document that is set.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Result != nil {
		return json.Marshal(o.Result)
	}
	return json.Marshal(o.Failure)
}

// MarshalYAML emits the document that is set.
func (o Outcome) MarshalYAML() (interface{}, error) {
	if o.Result != nil {
		return o.Result, nil
	}
	return o.Failure, nil
}

// =============================================================================
// PROCESSOR
// =============================================================================

// Processor runs the validation, aggregation and anomaly stages.
type Processor struct {
	now    func() time.Time
	logger *zap.SugaredLogger
}

// Option configures a Processor.
type Option func(p *Processor)

// WithClock replaces the wall clock used for processed_at and timing.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithLogger replaces the logger. By default the global logger is used.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(p *Processor) { p.logger = logger }
}

// New creates a Processor.
func New(opts ...Option) *Processor {
	p := &Processor{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) log() *zap.SugaredLogger {
	if p.logger != nil {
		return p.logger
	}
	return logging.Logger
}

// Process processes one batch document.
//
// PARAMETERS:
//   - data: The raw batch text.
//
// RETURNS:
//   - An Outcome holding a Result or a Failure, and the call's counters.
//     Process never panics and never returns a Go error.
func (p *Processor) Process(data []byte) (out Outcome) {
	log := p.log()
	start := p.now()
	log.Infow("Starting batch processing", "bytes", len(data))

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("Processing error", "panic", r)
			out.Result = nil
			out.Counters.ProcessingErrors++
			out.Failure = p.failure(types.FailureProcessing, errors.Newf("%v", r).Error())
		}
	}()

	var probe json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		log.Errorw("JSON parsing error", "error", err)
		return Outcome{Failure: p.failure(types.FailureParse, err.Error())}
	}

	result, counters, err := p.process(probe, start)
	if err != nil {
		log.Errorw("Processing error", "error", err)
		counters.ProcessingErrors++
		return Outcome{Failure: p.failure(types.FailureProcessing, err.Error()), Counters: counters}
	}

	log.Infow("Processing completed",
		"batch_id", result.BatchID,
		"seconds", result.ProcessingTimeSeconds,
		"valid", counters.ValidTransactions,
		"invalid", counters.InvalidTransactions,
	)
	return Outcome{Result: result, Counters: counters}
}

// process runs steps 2 to 5 over a syntactically valid document.
func (p *Processor) process(doc json.RawMessage, start time.Time) (*types.Result, Counters, error) {
	var counters Counters

	batch, err := decodeBatch(doc)
	if err != nil {
		return nil, counters, err
	}

	batchID := batch.ID()
	counters.TotalTransactions = len(batch.Transactions)
	p.log().Infow("Processing batch", "batch_id", batchID, "transactions", counters.TotalTransactions)

	valid := make([]*types.Transaction, 0, len(batch.Transactions))
	rejected := make([]types.ValidationError, 0)

	for idx, raw := range batch.Transactions {
		tx, ok, errs := validation.ValidateRaw(raw)
		if ok {
			counters.ValidTransactions++
			valid = append(valid, tx)
			continue
		}

		counters.InvalidTransactions++
		if len(rejected) < MaxValidationErrors {
			id := validation.TransactionIDOf(raw, types.UnknownLower)
			if tx != nil {
				id = tx.IDOr(types.UnknownLower)
			}
			rejected = append(rejected, types.ValidationError{
				TransactionIndex: idx,
				TransactionID:    id,
				Errors:           errs,
			})
		}
	}

	aggregates := analytics.Aggregate(valid)
	anomalies := anomaly.Detect(valid)

	end := p.now()
	return &types.Result{
		BatchID:               batchID,
		InputTransactionCount: counters.TotalTransactions,
		ProcessedAt:           end.UTC().Format(TimestampLayout),
		ProcessingTimeSeconds: analytics.Round2(end.Sub(start).Seconds()),
		Validation: types.ValidationReport{
			TotalTransactions:   counters.TotalTransactions,
			ValidTransactions:   counters.ValidTransactions,
			InvalidTransactions: counters.InvalidTransactions,
			ValidationErrors:    rejected,
		},
		Analytics: aggregates,
		Anomalies: anomalies,
		Metadata: types.Metadata{
			ProcessorVersion:    types.ProcessorVersion,
			InputBatchID:        batchID,
			OriginalGeneratedAt: batch.GeneratedAtOr(types.UnknownLower),
		},
	}, counters, nil
}

// decodeBatch decodes the envelope. The document must be a JSON object whose
// transactions, when present, is an array.
func decodeBatch(doc json.RawMessage) (*types.Batch, error) {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("batch document must be a JSON object")
	}

	var batch types.Batch
	if err := json.Unmarshal(trimmed, &batch); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, errors.Newf("field %s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return nil, errors.Wrap(err, "decode batch")
	}
	return &batch, nil
}

func (p *Processor) failure(kind, details string) *types.Failure {
	return &types.Failure{
		Error:       kind,
		Details:     details,
		ProcessedAt: p.now().UTC().Format(TimestampLayout),
	}
}
