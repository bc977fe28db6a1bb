package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"tally/internal/tally"
)

// CSVImporter loads one event per row. Columns (any order, case-insensitive):
// TASK (or NAME), DATE (or ISO), optional QTY and ARCHIVED. Tasks are created
// in order of first appearance.
type CSVImporter struct {
	opts Options
}

func (c *CSVImporter) Name() string { return "csv" }

func (c *CSVImporter) Import(reader io.Reader, target Target) (*ImportResult, error) {
	tasks, skipped, err := c.parse(reader)
	if err != nil {
		return nil, err
	}
	if err := target.Save(tasks); err != nil {
		return nil, err
	}
	r := resultFor(tasks)
	r.Skipped = len(skipped)
	r.Errors = skipped
	return r, nil
}

func (c *CSVImporter) Preview(reader io.Reader) ([]PreviewTask, error) {
	tasks, _, err := c.parse(reader)
	if err != nil {
		return nil, err
	}
	return preview(tasks), nil
}

func (c *CSVImporter) location() *time.Location {
	if c.opts.Now != nil {
		return c.opts.Now().Location()
	}
	return time.Local
}

func (c *CSVImporter) parse(reader io.Reader) ([]tally.Task, []string, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, nil, &tally.ParseError{Source: "import", Err: fmt.Errorf("failed to read CSV header: %w", err)}
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff") // UTF-8 BOM
		}
		colIndex[strings.ToUpper(strings.TrimSpace(col))] = i
	}
	nameCol, ok := firstColumn(colIndex, "TASK", "NAME")
	if !ok {
		return nil, nil, &tally.ValidationError{Source: "import", Msg: "missing required column: TASK"}
	}
	dateCol, ok := firstColumn(colIndex, "DATE", "ISO")
	if !ok {
		return nil, nil, &tally.ValidationError{Source: "import", Msg: "missing required column: DATE"}
	}
	qtyCol, hasQty := colIndex["QTY"]
	archCol, hasArch := colIndex["ARCHIVED"]

	var (
		tasks   []tally.Task
		byName  = make(map[string]int)
		skipped []string
		line    = 1
	)
	field := func(record []string, idx int) string {
		if idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, nil, &tally.ParseError{Source: "import", Err: fmt.Errorf("failed to read CSV row %d: %w", line, err)}
		}

		name := field(record, nameCol)
		if name == "" {
			skipped = append(skipped, fmt.Sprintf("row %d: missing task name", line))
			continue
		}

		iso, ok := c.eventISO(field(record, dateCol))
		if !ok {
			skipped = append(skipped, fmt.Sprintf("row %d: unreadable date %q", line, field(record, dateCol)))
			continue
		}

		qty := 1
		if hasQty {
			if raw := field(record, qtyCol); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil || n <= 0 {
					skipped = append(skipped, fmt.Sprintf("row %d: quantity must be a positive whole number, got %q", line, raw))
					continue
				}
				qty = n
			}
		}

		key := strings.ToLower(name)
		i, seen := byName[key]
		if !seen {
			tasks = tally.AddTask(tasks, name, c.opts.id())
			i = len(tasks) - 1
			byName[key] = i
		}
		if hasArch && parseBool(field(record, archCol)) {
			tasks[i].Archived = true
		}
		tasks[i].Events = append(tasks[i].Events, tally.Event{ISO: iso, Qty: qty})
	}

	if len(tasks) == 0 {
		return nil, skipped, &tally.ValidationError{Source: "import", Msg: "no usable rows"}
	}
	return tasks, skipped, nil
}

// eventISO turns a DATE cell into an event timestamp. Bare dates land on
// local noon, like backdated logs.
func (c *CSVImporter) eventISO(raw string) (string, bool) {
	if tally.ValidDateKey(raw) {
		at, ok := tally.LocalNoon(raw, c.location())
		if !ok {
			return "", false
		}
		return tally.FormatISO(at), true
	}
	at, ok := tally.ParseInstant(raw)
	if !ok {
		return "", false
	}
	return tally.FormatISO(at), true
}

func firstColumn(colIndex map[string]int, names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := colIndex[n]; ok {
			return i, true
		}
	}
	return 0, false
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "x":
		return true
	}
	return false
}
