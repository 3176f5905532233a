package badger

import (
	"fmt"
)

// Key prefixes for different data types
const (
	importRecordPrefix = "imprec"
)

// makeImportRecordKey generates a key for an import record by document id.
// Format: prefix:documentID
func makeImportRecordKey(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", importRecordPrefix, documentID))
}

// importRecordScanPrefix is the iteration prefix covering every import record.
func importRecordScanPrefix() []byte {
	return []byte(importRecordPrefix + ":")
}
