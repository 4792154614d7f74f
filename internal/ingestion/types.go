// Package ingestion holds the types shared between the spreadsheet source
// adapter and the reconciliation engine.
package ingestion

// Record is one source row keyed by its header-row field names.
type Record = map[string]string

// Snapshot is a full fetch of the spreadsheet source: the four reference
// sheets plus the master list of catalog entries.
type Snapshot struct {
	Genres     []Record `json:"genres"`
	Categories []Record `json:"categories"`
	Rating     []Record `json:"rating"`
	Status     []Record `json:"status"`
	MasterList []Record `json:"master_list"`
}
