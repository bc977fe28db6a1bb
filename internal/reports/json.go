package reports

import (
	"encoding/json"
)

// FormatJSON formats a report as indented JSON.
func FormatJSON(report *RangeReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
