package types

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// =============================================================================
// OUTPUT DOCUMENTS
// =============================================================================
// Process returns exactly one of Result or Failure. Both marshal to JSON and
// YAML with stable field names; name-keyed breakdowns keep their order.

// ProcessorVersion is stamped into every Result's metadata.
const ProcessorVersion = "1.0.0"

// Tally counts occurrences per name in first-seen order.
type Tally = orderedmap.OrderedMap[string, int]

// Amounts holds a monetary value per name in a caller-chosen order.
type Amounts = orderedmap.OrderedMap[string, float64]

// NewTally returns an empty Tally.
func NewTally() *Tally {
	return orderedmap.New[string, int]()
}

// NewAmounts returns an empty Amounts.
func NewAmounts() *Amounts {
	return orderedmap.New[string, float64]()
}

// ValidationError describes one rejected transaction.
type ValidationError struct {
	TransactionIndex int      `json:"transaction_index" yaml:"transaction_index"`
	TransactionID    string   `json:"transaction_id" yaml:"transaction_id"`
	Errors           []string `json:"errors" yaml:"errors"`
}

// ValidationReport summarizes the validation stage of one batch.
type ValidationReport struct {
	TotalTransactions   int               `json:"total_transactions" yaml:"total_transactions"`
	ValidTransactions   int               `json:"valid_transactions" yaml:"valid_transactions"`
	InvalidTransactions int               `json:"invalid_transactions" yaml:"invalid_transactions"`
	ValidationErrors    []ValidationError `json:"validation_errors" yaml:"validation_errors"`
}

// Summary holds the batch-wide totals and averages.
type Summary struct {
	TotalTransactions     int     `json:"total_transactions" yaml:"total_transactions"`
	CompletedTransactions int     `json:"completed_transactions" yaml:"completed_transactions"`
	TotalRevenue          float64 `json:"total_revenue" yaml:"total_revenue"`
	TotalTax              float64 `json:"total_tax" yaml:"total_tax"`
	TotalShipping         float64 `json:"total_shipping" yaml:"total_shipping"`
	AverageOrderValue     float64 `json:"average_order_value" yaml:"average_order_value"`
	AverageTax            float64 `json:"average_tax" yaml:"average_tax"`
	AverageShipping       float64 `json:"average_shipping" yaml:"average_shipping"`
}

// CustomerRanking is one entry of the top customers list.
type CustomerRanking struct {
	CustomerID   string  `json:"customer_id" yaml:"customer_id"`
	TotalRevenue float64 `json:"total_revenue" yaml:"total_revenue"`
	OrderCount   int     `json:"order_count" yaml:"order_count"`
}

// ProductRanking is one entry of the top products lists.
type ProductRanking struct {
	Product      string  `json:"product" yaml:"product"`
	Revenue      float64 `json:"revenue" yaml:"revenue"`
	QuantitySold int     `json:"quantity_sold" yaml:"quantity_sold"`
}

// Analytics is the aggregator's output.
type Analytics struct {
	Summary               Summary           `json:"summary" yaml:"summary"`
	StatusBreakdown       *Tally            `json:"status_breakdown" yaml:"status_breakdown"`
	RevenueByCategory     *Amounts          `json:"revenue_by_category" yaml:"revenue_by_category"`
	TopCustomers          []CustomerRanking `json:"top_customers" yaml:"top_customers"`
	TopProductsByRevenue  []ProductRanking  `json:"top_products_by_revenue" yaml:"top_products_by_revenue"`
	TopProductsByQuantity []ProductRanking  `json:"top_products_by_quantity" yaml:"top_products_by_quantity"`
	PaymentMethods        *Tally            `json:"payment_methods" yaml:"payment_methods"`
	ShippingMethods       *Tally            `json:"shipping_methods" yaml:"shipping_methods"`
}

// NewAnalytics returns an Analytics with every map and list initialized, so an
// empty batch still marshals to objects and arrays rather than nulls.
func NewAnalytics() *Analytics {
	return &Analytics{
		StatusBreakdown:       NewTally(),
		RevenueByCategory:     NewAmounts(),
		TopCustomers:          []CustomerRanking{},
		TopProductsByRevenue:  []ProductRanking{},
		TopProductsByQuantity: []ProductRanking{},
		PaymentMethods:        NewTally(),
		ShippingMethods:       NewTally(),
	}
}

// HighValueTransaction is a transaction whose total exceeds the threshold.
type HighValueTransaction struct {
	TransactionID string  `json:"transaction_id" yaml:"transaction_id"`
	Total         float64 `json:"total" yaml:"total"`
	Timestamp     string  `json:"timestamp" yaml:"timestamp"`
	CustomerID    *string `json:"customer_id" yaml:"customer_id"`
}

// Pattern types reported in SuspiciousPattern.Type.
const (
	PatternDuplicateID  = "duplicate_transaction_id"
	PatternHighQuantity = "high_quantity"
)

// SuspiciousPattern is one finding of the pattern scan. Product and Quantity
// are only set for high quantity findings.
//
// A high quantity finding always carries the product key, null when the line
// item has no product name. Other findings omit both keys.
type SuspiciousPattern struct {
	Type          string  `json:"type" yaml:"type"`
	TransactionID string  `json:"transaction_id" yaml:"transaction_id"`
	Product       *string `json:"product,omitempty" yaml:"product,omitempty"`
	Quantity      *int    `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Description   string  `json:"description" yaml:"description"`
}

// highQuantityPattern is the encoded form of a high quantity finding.
type highQuantityPattern struct {
	Type          string  `json:"type" yaml:"type"`
	TransactionID string  `json:"transaction_id" yaml:"transaction_id"`
	Product       *string `json:"product" yaml:"product"`
	Quantity      *int    `json:"quantity" yaml:"quantity"`
	Description   string  `json:"description" yaml:"description"`
}

type plainPattern SuspiciousPattern

func (p SuspiciousPattern) encoded() interface{} {
	if p.Type == PatternHighQuantity {
		return highQuantityPattern(p)
	}
	return plainPattern(p)
}

// MarshalJSON implements json.Marshaler.
func (p SuspiciousPattern) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.encoded())
}

// MarshalYAML implements yaml.Marshaler.
func (p SuspiciousPattern) MarshalYAML() (interface{}, error) {
	return p.encoded(), nil
}

// FrequentCustomer is a customer with more transactions than allowed in one batch.
type FrequentCustomer struct {
	CustomerID       string  `json:"customer_id" yaml:"customer_id"`
	TransactionCount int     `json:"transaction_count" yaml:"transaction_count"`
	TotalSpent       float64 `json:"total_spent" yaml:"total_spent"`
}

// HighValueReport lists high value transactions. Count is the true number
// found; Transactions may be truncated.
type HighValueReport struct {
	Count        int                    `json:"count" yaml:"count"`
	Threshold    float64                `json:"threshold" yaml:"threshold"`
	Transactions []HighValueTransaction `json:"transactions" yaml:"transactions"`
}

// PatternReport lists suspicious patterns. Count is the true number found;
// Patterns may be truncated.
type PatternReport struct {
	Count    int                 `json:"count" yaml:"count"`
	Patterns []SuspiciousPattern `json:"patterns" yaml:"patterns"`
}

// FrequentCustomerReport lists every frequent customer.
type FrequentCustomerReport struct {
	Count     int                `json:"count" yaml:"count"`
	Customers []FrequentCustomer `json:"customers" yaml:"customers"`
}

// Anomalies is the anomaly detector's output.
type Anomalies struct {
	HighValueTransactions HighValueReport        `json:"high_value_transactions" yaml:"high_value_transactions"`
	SuspiciousPatterns    PatternReport          `json:"suspicious_patterns" yaml:"suspicious_patterns"`
	FrequentCustomers     FrequentCustomerReport `json:"frequent_customers" yaml:"frequent_customers"`
}

// Metadata identifies the processor and the input batch.
type Metadata struct {
	ProcessorVersion    string `json:"processor_version" yaml:"processor_version"`
	InputBatchID        string `json:"input_batch_id" yaml:"input_batch_id"`
	OriginalGeneratedAt string `json:"original_generated_at" yaml:"original_generated_at"`
}

// TaskMetadata is attached by the task runner to whichever document it uploads.
type TaskMetadata struct {
	JobID           string `json:"job_id" yaml:"job_id"`
	TaskID          string `json:"task_id" yaml:"task_id"`
	InputBlob       string `json:"input_blob" yaml:"input_blob"`
	InputContainer  string `json:"input_container" yaml:"input_container"`
	OutputContainer string `json:"output_container" yaml:"output_container"`
}

// Result is the document produced for a batch that could be processed.
type Result struct {
	BatchID               string           `json:"batch_id" yaml:"batch_id"`
	InputTransactionCount int              `json:"input_transaction_count" yaml:"input_transaction_count"`
	ProcessedAt           string           `json:"processed_at" yaml:"processed_at"`
	ProcessingTimeSeconds float64          `json:"processing_time_seconds" yaml:"processing_time_seconds"`
	Validation            ValidationReport `json:"validation" yaml:"validation"`
	Analytics             *Analytics       `json:"analytics" yaml:"analytics"`
	Anomalies             *Anomalies       `json:"anomalies" yaml:"anomalies"`
	Metadata              Metadata         `json:"metadata" yaml:"metadata"`
	TaskMetadata          *TaskMetadata    `json:"task_metadata,omitempty" yaml:"task_metadata,omitempty"`
}

// Failure messages.
const (
	FailureParse      = "JSON parsing failed"
	FailureProcessing = "Processing failed"
)

// Failure is the document produced when a batch could not be processed.
type Failure struct {
	Error        string        `json:"error" yaml:"error"`
	Details      string        `json:"details" yaml:"details"`
	ProcessedAt  string        `json:"processed_at" yaml:"processed_at"`
	TaskMetadata *TaskMetadata `json:"task_metadata,omitempty" yaml:"task_metadata,omitempty"`
}

// Document is either a *Result or a *Failure.
type Document interface {
	SetTaskMetadata(meta *TaskMetadata)
}

// SetTaskMetadata attaches task metadata to the result.
func (r *Result) SetTaskMetadata(meta *TaskMetadata) { r.TaskMetadata = meta }

// SetTaskMetadata attaches task metadata to the failure.
func (f *Failure) SetTaskMetadata(meta *TaskMetadata) { f.TaskMetadata = meta }

// DecodeDocument decodes a previously written output document, returning a
// *Result or a *Failure depending on whether an "error" key is present.
func DecodeDocument(data []byte) (Document, error) {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.Error != nil {
		var f Failure
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return &f, nil
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
