package services

import (
	"encoding/json"

	"gorm.io/datatypes"
)

func mustJSON(v interface{}) datatypes.JSON {
	raw, _ := json.Marshal(v)
	return raw
}
