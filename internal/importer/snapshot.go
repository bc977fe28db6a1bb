package importer

import (
	"io"

	"tally/internal/tally"
)

// SnapshotImporter loads the versioned export format.
type SnapshotImporter struct{}

func (s *SnapshotImporter) Name() string { return "snapshot" }

// Import replaces the target's list with the snapshot's. The target keeps
// its list if the payload does not parse or validate.
func (s *SnapshotImporter) Import(reader io.Reader, target Target) (*ImportResult, error) {
	data, err := readAll(reader)
	if err != nil {
		return nil, err
	}
	tasks, err := target.ImportSnapshot(data)
	if err != nil {
		return nil, err
	}
	return resultFor(tasks), nil
}

func (s *SnapshotImporter) Preview(reader io.Reader) ([]PreviewTask, error) {
	data, err := readAll(reader)
	if err != nil {
		return nil, err
	}
	snap, err := tally.DecodeSnapshot(data, "import")
	if err != nil {
		return nil, err
	}
	return preview(snap.Tasks), nil
}
