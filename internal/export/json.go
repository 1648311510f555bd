package export

import (
	"encoding/json"
	"os"
)

// WriteReportJSON renders the report payload as indented JSON.
func WriteReportJSON(path string, report any) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
