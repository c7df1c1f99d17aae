// =============================================================================
// Sales Batch Processor - Synthetic Data Generator
// =============================================================================
//
// This module generates realistic sales batches for demos and load tests.
// With a fixed seed and clock the output is fully reproducible, transaction
// ids included.
//
// GENERATED DATA:
//   - 1 to 5 line items per transaction, quantity 1 to 5
//   - Unit prices within 20% of the product's base price
//   - A 15% chance of a 5% to 30% line discount
//   - 8% tax, shipping cost by shipping method
//   - A 1% chance of an inflated total (10x to 50x), flagged with
//     _is_synthetic_anomaly so detection can be checked
//   - Status: completed 3 in 5, pending 1 in 5, cancelled 1 in 5
//
// =============================================================================

package generator

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/sales-batch-processor/internal/analytics"
	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/internal/types"
)

// DefaultCount is the number of transactions per batch.
const DefaultCount = 1000

const (
	taxRate         = 0.08
	discountChance  = 0.15
	anomalyChance   = 0.01
	timestampLayout = "2006-01-02T15:04:05Z"
)

// Product is a catalog entry.
type Product struct {
	Name      string
	Category  string
	BasePrice float64
}

// Products is the catalog line items are drawn from.
var Products = []Product{
	{"Wireless Headphones", "Electronics", 79.99},
	{"USB-C Cable", "Electronics", 12.99},
	{"Laptop Stand", "Office", 45.00},
	{"Mechanical Keyboard", "Electronics", 129.99},
	{"Ergonomic Mouse", "Electronics", 59.99},
	{"Notebook Set", "Stationery", 15.99},
	{"Water Bottle", "Home", 24.99},
	{"Desk Lamp", "Office", 39.99},
	{"Phone Case", "Accessories", 19.99},
	{"Backpack", "Bags", 69.99},
	{"Portable Charger", "Electronics", 34.99},
	{"Screen Protector", "Accessories", 9.99},
	{"Coffee Mug", "Home", 12.99},
	{"Desk Organizer", "Office", 27.99},
	{"Fitness Tracker", "Wearables", 99.99},
}

var (
	firstNames = []string{
		"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael",
		"Linda", "William", "Elizabeth", "David", "Barbara", "Richard", "Susan",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
		"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	}

	// Countries, States, PaymentMethods and ShippingMethods are the value
	// pools of the generated fields.
	Countries       = []string{"USA", "Canada", "UK", "Germany", "France", "Australia", "Japan"}
	States          = []string{"CA", "NY", "TX", "FL", "WA", "IL", "PA", "OH", "GA", "NC"}
	PaymentMethods  = []string{"Credit Card", "Debit Card", "PayPal", "Apple Pay", "Google Pay"}
	ShippingMethods = []string{"Standard", "Express", "Next Day", "International"}

	shippingCost = map[string]float64{
		"Standard":      5.99,
		"Express":       12.99,
		"Next Day":      24.99,
		"International": 35.99,
	}

	statuses = []string{"completed", "completed", "completed", "pending", "cancelled"}
)

// Record is a generated transaction plus the hidden anomaly flag.
type Record struct {
	types.Transaction
	SyntheticAnomaly bool `json:"_is_synthetic_anomaly"`
}

// DateRange is the period a batch's transactions cover.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Batch is a generated batch document.
type Batch struct {
	BatchID          string    `json:"batch_id"`
	GeneratedAt      string    `json:"generated_at"`
	TransactionCount int       `json:"transaction_count"`
	DateRange        DateRange `json:"date_range"`
	Transactions     []Record  `json:"transactions"`
}

// Generator produces synthetic batches. It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
	ids *rand.ChaCha8
	now func() time.Time
}

// New returns a Generator. A zero seed draws a random one.
func New(seed uint64, now func() time.Time) *Generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	if now == nil {
		now = time.Now
	}

	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)

	binary.LittleEndian.PutUint64(key[8:], ^seed)
	return &Generator{
		rng: rand.New(src),
		ids: rand.NewChaCha8(key),
		now: now,
	}
}

// Generate builds a batch of count transactions dated on the current day.
func (g *Generator) Generate(count int) (*Batch, error) {
	if count < 0 {
		return nil, errors.Newf("transaction count must not be negative, got %d", count)
	}

	now := g.now().UTC()
	batch := &Batch{
		BatchID:          uuid.Must(uuid.NewRandomFromReader(g.ids)).String(),
		GeneratedAt:      now.Format(timestampLayout),
		TransactionCount: count,
		DateRange: DateRange{
			Start: now.AddDate(0, 0, -30).Format(timestampLayout),
			End:   now.Format(timestampLayout),
		},
		Transactions: make([]Record, 0, count),
	}

	for i := 0; i < count; i++ {
		rec, err := g.transaction(now)
		if err != nil {
			return nil, err
		}
		batch.Transactions = append(batch.Transactions, rec)
	}
	return batch, nil
}

func (g *Generator) transaction(day time.Time) (Record, error) {
	id, err := uuid.NewRandomFromReader(g.ids)
	if err != nil {
		return Record{}, errors.Wrap(err, "failed to generate transaction id")
	}

	ts := time.Date(day.Year(), day.Month(), day.Day(),
		g.rng.IntN(24), g.rng.IntN(60), g.rng.IntN(60), 0, time.UTC)

	items := make([]types.LineItem, 1+g.rng.IntN(5))
	subtotal := 0.0
	for i := range items {
		items[i] = g.lineItem()
		subtotal += *items[i].Subtotal
	}
	subtotal = analytics.Round2(subtotal)

	shipping := g.pick(ShippingMethods)
	tax := analytics.Round2(subtotal * taxRate)
	total := analytics.Round2(subtotal + tax + shippingCost[shipping])

	anomalous := g.rng.Float64() < anomalyChance
	if anomalous {
		total = analytics.Round2(total * g.between(10, 50))
	}

	return Record{
		Transaction: types.Transaction{
			TransactionID:  types.Ptr(id.String()),
			Timestamp:      types.Ptr(ts.Format(timestampLayout)),
			Customer:       g.customer(),
			LineItems:      items,
			Subtotal:       types.Ptr(subtotal),
			Tax:            types.Ptr(tax),
			ShippingCost:   types.Ptr(shippingCost[shipping]),
			Total:          types.Ptr(total),
			PaymentMethod:  types.Ptr(g.pick(PaymentMethods)),
			ShippingMethod: types.Ptr(shipping),
			Status:         types.Ptr(g.pick(statuses)),
		},
		SyntheticAnomaly: anomalous,
	}, nil
}

func (g *Generator) customer() *types.Customer {
	first := g.pick(firstNames)
	last := g.pick(lastNames)
	country := g.pick(Countries)

	c := &types.Customer{
		CustomerID: types.Ptr(fmt.Sprintf("CUST-%d", 10000+g.rng.IntN(90000))),
		Name:       types.Ptr(first + " " + last),
		Email:      types.Ptr(strings.ToLower(first) + "." + strings.ToLower(last) + "@example.com"),
		Country:    types.Ptr(country),
	}
	if country == "USA" {
		c.State = types.Ptr(g.pick(States))
	}
	return c
}

func (g *Generator) lineItem() types.LineItem {
	product := Products[g.rng.IntN(len(Products))]
	quantity := 1 + g.rng.IntN(5)
	unitPrice := analytics.Round2(product.BasePrice * g.between(0.8, 1.2))

	discount := 0.0
	if g.rng.Float64() < discountChance {
		discount = analytics.Round2(g.between(0.05, 0.30) * unitPrice * float64(quantity))
	}

	return types.LineItem{
		ProductID:   types.Ptr(fmt.Sprintf("PROD-%d", 1000+g.rng.IntN(9000))),
		ProductName: types.Ptr(product.Name),
		Category:    types.Ptr(product.Category),
		Quantity:    types.Ptr(quantity),
		UnitPrice:   types.Ptr(unitPrice),
		Discount:    types.Ptr(discount),
		Subtotal:    types.Ptr(analytics.Round2(unitPrice*float64(quantity) - discount)),
	}
}

func (g *Generator) pick(values []string) string {
	return values[g.rng.IntN(len(values))]
}

func (g *Generator) between(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// FileName returns the name of the index-th generated file (1-based).
func FileName(now time.Time, index int) string {
	return fmt.Sprintf("sales_batch_%s_%03d.json", now.UTC().Format("20060102_150405"), index)
}

// Save writes batch as indented JSON, creating parent directories.
func Save(batch *Batch, path string) error {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode batch")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
