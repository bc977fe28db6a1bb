package importer

import (
	"fmt"
	"io"

	"tally/internal/tally"
)

// EventsImporter loads the legacy flat list of timestamps as one task with a
// quantity of 1 per entry.
type EventsImporter struct {
	opts Options
}

func (e *EventsImporter) Name() string { return "events" }

func (e *EventsImporter) Import(reader io.Reader, target Target) (*ImportResult, error) {
	tasks, skipped, err := e.parse(reader)
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

func (e *EventsImporter) Preview(reader io.Reader) ([]PreviewTask, error) {
	tasks, _, err := e.parse(reader)
	if err != nil {
		return nil, err
	}
	return preview(tasks), nil
}

func (e *EventsImporter) parse(reader io.Reader) ([]tally.Task, []string, error) {
	data, err := readAll(reader)
	if err != nil {
		return nil, nil, err
	}
	isos, err := tally.DecodeLegacyEvents(data, "import")
	if err != nil {
		return nil, nil, err
	}

	var kept, skipped []string
	for i, iso := range isos {
		if _, ok := tally.ParseInstant(iso); !ok {
			skipped = append(skipped, fmt.Sprintf("entry %d: unreadable timestamp %q", i+1, iso))
			continue
		}
		kept = append(kept, iso)
	}
	if len(kept) == 0 {
		return nil, skipped, &tally.ValidationError{Source: "import", Msg: "no usable timestamps"}
	}
	return tally.MigrateLegacy(kept, e.opts.TaskName, e.opts.id()), skipped, nil
}
