// Package seed loads the bootstrap dataset the assistant demos against. The
// dataset is YAML, validated against an embedded JSON Schema before anything
// touches the database, and is only applied when the store is empty.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/opsdeskhq/opsdesk/internal/opsdesk/domain"
	"github.com/opsdeskhq/opsdesk/internal/opsdesk/store"
)

//go:embed schema.json
var schemaJSON string

//go:embed dataset.yaml
var defaultDataset []byte

// Dataset is the full seed payload.
type Dataset struct {
	Clients     []*domain.Client           `yaml:"clients" json:"clients"`
	Technicians []*domain.Technician       `yaml:"technicians" json:"technicians"`
	Jobs        []*domain.Job              `yaml:"jobs" json:"jobs"`
	Quotes      []*domain.Quote            `yaml:"quotes,omitempty" json:"quotes,omitempty"`
	Invoices    []*domain.Invoice          `yaml:"invoices,omitempty" json:"invoices,omitempty"`
	Products    []*domain.InventoryProduct `yaml:"products,omitempty" json:"products,omitempty"`
	Stock       []*domain.InventoryRecord  `yaml:"stock,omitempty" json:"stock,omitempty"`
}

// Parse decodes and validates a YAML seed document. It is the canonical entry
// point for loading seed datasets.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("seed parse: %w", err)
	}
	if err := validate(&ds); err != nil {
		return nil, fmt.Errorf("seed validate: %w", err)
	}
	return &ds, nil
}

// Load reads the dataset from path, falling back to the embedded default when
// path is empty.
func Load(path string) (*Dataset, error) {
	data := defaultDataset
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("seed load: %w", err)
		}
	}
	return Parse(data)
}

// validate checks the dataset against the embedded JSON Schema. The typed
// struct is round-tripped through encoding/json because the schema library
// validates JSON-shaped values, not Go structs.
func validate(ds *Dataset) error {
	schema, err := jsonschema.CompileString("schema.json", schemaJSON)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	raw, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode dataset: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return referencesValid(ds)
}

// referencesValid checks cross-record references the schema cannot express.
func referencesValid(ds *Dataset) error {
	clients := make(map[string]struct{}, len(ds.Clients))
	for _, c := range ds.Clients {
		if _, dup := clients[c.ID]; dup {
			return fmt.Errorf("duplicate client id %q", c.ID)
		}
		clients[c.ID] = struct{}{}
	}
	techs := make(map[string]struct{}, len(ds.Technicians))
	for _, t := range ds.Technicians {
		techs[t.ID] = struct{}{}
	}
	products := make(map[string]struct{}, len(ds.Products))
	for _, p := range ds.Products {
		products[p.ID] = struct{}{}
	}

	for _, j := range ds.Jobs {
		if _, ok := clients[j.ClientID]; !ok {
			return fmt.Errorf("job %s: unknown client %q", j.ID, j.ClientID)
		}
		for _, techID := range j.TechnicianIDs {
			if _, ok := techs[techID]; !ok {
				return fmt.Errorf("job %s: unknown technician %q", j.ID, techID)
			}
		}
		if err := j.Validate(); err != nil {
			return err
		}
	}
	for _, q := range ds.Quotes {
		if _, ok := clients[q.ClientID]; !ok {
			return fmt.Errorf("quote %s: unknown client %q", q.ID, q.ClientID)
		}
	}
	for _, inv := range ds.Invoices {
		if _, ok := clients[inv.ClientID]; !ok {
			return fmt.Errorf("invoice %s: unknown client %q", inv.ID, inv.ClientID)
		}
	}
	for _, r := range ds.Stock {
		if _, ok := products[r.ProductID]; !ok {
			return fmt.Errorf("stock record: unknown product %q", r.ProductID)
		}
	}
	return nil
}

// Apply inserts the dataset into the store. It is a no-op when the store
// already has clients, so restarting the service never duplicates records.
func Apply(ctx context.Context, s *store.Store, ds *Dataset) error {
	counts, err := s.Counts(ctx)
	if err != nil {
		return fmt.Errorf("seed apply: %w", err)
	}
	if counts["clients"] > 0 {
		return nil
	}

	for _, c := range ds.Clients {
		if err := s.CreateClient(ctx, c); err != nil {
			return fmt.Errorf("seed client %s: %w", c.ID, err)
		}
	}
	for _, t := range ds.Technicians {
		if err := s.UpsertTechnician(ctx, t); err != nil {
			return fmt.Errorf("seed technician %s: %w", t.ID, err)
		}
	}
	for _, j := range ds.Jobs {
		if err := s.CreateJob(ctx, j); err != nil {
			return fmt.Errorf("seed job %s: %w", j.ID, err)
		}
	}
	for _, q := range ds.Quotes {
		if err := s.CreateQuote(ctx, q); err != nil {
			return fmt.Errorf("seed quote %s: %w", q.ID, err)
		}
	}
	for _, inv := range ds.Invoices {
		if err := s.CreateInvoice(ctx, inv); err != nil {
			return fmt.Errorf("seed invoice %s: %w", inv.ID, err)
		}
	}
	for _, p := range ds.Products {
		if err := s.UpsertProduct(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	for _, r := range ds.Stock {
		if err := s.SetStock(ctx, r); err != nil {
			return fmt.Errorf("seed stock %s/%s: %w", r.ProductID, r.Location, err)
		}
	}
	return nil
}
