package folioplan

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// this file contains functions to handle the import/export format.
// Exports should remain human readable and easy to diff or load into a
// spreadsheet; imports tolerate the shapes real broker exports come in.

// ExportSnapshotsCSV writes one CSV line per holding record, flattened with
// its snapshot month.
func ExportSnapshotsCSV(w io.Writer, snapshots []*Snapshot) error {
	cw := csv.NewWriter(w)
	header := []string{
		"month", "asset_id", "name", "category",
		"unit_price", "quantity", "market_value", "total_cost",
		"added_quantity", "added_principal",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}
	for _, s := range snapshots {
		for _, r := range s.Records {
			row := []string{
				s.Month.String(), r.AssetID, r.Name, string(r.Category),
				r.UnitPrice.Decimal().String(), r.Quantity.String(),
				r.MarketValue.Decimal().String(), r.TotalCost.Decimal().String(),
				r.AddedQuantity.String(), r.AddedPrincipal.Decimal().String(),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("cannot write CSV row for %s/%s: %w", s.Month, r.AssetID, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportSnapshotsJSONL writes one JSON object per line for each snapshot,
// with the stable field order of Snapshot.MarshalJSON.
func ExportSnapshotsJSONL(w io.Writer, snapshots []*Snapshot) error {
	for _, s := range snapshots {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("cannot marshal snapshot %q: %w", s.Month, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("cannot write snapshot format: %w", err)
		}
	}
	return nil
}

// ImportSnapshotsJSONL reads snapshots from 'r', one JSON object per line.
func ImportSnapshotsJSONL(r io.Reader) ([]*Snapshot, error) {
	var snapshots []*Snapshot
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var s Snapshot
		if err := json.Unmarshal(line, &s); err != nil {
			return nil, fmt.Errorf("cannot parse line for snapshot import format: %q: %w", string(line), err)
		}
		snapshots = append(snapshots, &s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	SortSnapshots(snapshots)
	return snapshots, nil
}

// RecordMapping describes where to find holding fields inside an arbitrary
// broker or bank JSON export, as jsonpath expressions evaluated against each
// item of Items. Quantity and Price are required; the rest default to empty.
type RecordMapping struct {
	Items    string `json:"items"`    // e.g. "$.positions[*]"
	AssetID  string `json:"assetId"`  // e.g. "$.isin"
	Name     string `json:"name"`     // e.g. "$.description"
	Quantity string `json:"quantity"` // e.g. "$.size"
	Price    string `json:"price"`    // e.g. "$.price"
}

// ImportRecords extracts holding records from a broker JSON export using the
// mapping. Only identity, quantity and price are imported; the caller
// replays flows against the previous snapshot to rebuild cost and value.
func ImportRecords(r io.Reader, mapping RecordMapping, category AssetCategory, currency string) ([]HoldingRecord, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot parse import document: %w", err)
	}

	jitems, err := jsonpath.Get(mapping.Items, jobj)
	if err != nil {
		return nil, fmt.Errorf("cannot evaluate items path %q: %w", mapping.Items, err)
	}
	items, ok := jitems.([]any)
	if !ok {
		// jsonpath is never clear about whether it returns a list or a single
		// answer: accept a lone item too.
		items = []any{jitems}
	}

	records := make([]HoldingRecord, 0, len(items))
	for i, item := range items {
		assetID, err := pathString(mapping.AssetID, item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		name, _ := pathString(mapping.Name, item)
		quantity, err := pathNumber(mapping.Quantity, item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		price, err := pathNumber(mapping.Price, item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		q := Q(quantity)
		unitPrice := A(price, currency)
		records = append(records, HoldingRecord{
			AssetID:     assetID,
			Name:        name,
			Category:    category,
			UnitPrice:   unitPrice,
			Quantity:    q,
			MarketValue: unitPrice.Mul(q),
		})
	}
	return records, nil
}

// pathString evaluates a jsonpath expected to yield a string.
func pathString(path string, jobj any) (string, error) {
	if path == "" {
		return "", nil
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return "", fmt.Errorf("cannot evaluate %q: %w", path, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	s, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("path %q: not a string: %v", path, jval)
	}
	return s, nil
}

// pathNumber evaluates a jsonpath expected to yield a number, accepting the
// string-encoded numbers some exports use.
func pathNumber(path string, jobj any) (decimal.Decimal, error) {
	if path == "" {
		return decimal.Zero, nil
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot evaluate %q: %w", path, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("path %q: not a number: %q", path, v)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("path %q: not a number: %v", path, jval)
	}
}
