package services

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// jsonEvidence marshals an evidence payload for a jsonb column. Payloads
// are plain maps of scalars, so a marshal failure means a programming
// error; it degrades to an empty object rather than dropping the row.
func jsonEvidence(v map[string]interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}
