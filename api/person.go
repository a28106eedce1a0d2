package api

import (
	"github.com/rs/xid"
)

//PersonTable is the table holding person records
const PersonTable = "person"

//Person represents a single person record
type Person struct {
	Name string `json:"name"`
}

//NextID generates a pseudo-random ID that could be used when creating a record
func NextID() string {
	return xid.New().String()
}
