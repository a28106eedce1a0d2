package api

import (
	"encoding/json"
	"fmt"
)

//Statement outcome statuses as reported by the engine
const (
	StatusOK  = "OK"
	StatusErr = "ERR"
)

//Result is the outcome of a single statement within a submitted script
type Result struct {
	Status string          `json:"status"`
	Time   string          `json:"time,omitempty"`
	Detail string          `json:"detail,omitempty"`
	Data   json.RawMessage `json:"result,omitempty"`
}

//OK reports whether the statement succeeded
func (r Result) OK() bool {
	return r.Status == StatusOK
}

//ResultSet is the positionally-indexed list of statement outcomes for one
//submitted script: slot i belongs to statement i.
type ResultSet []Result

//Check returns the first failed slot as an error, or nil if every statement
//succeeded
func (rs ResultSet) Check() error {
	for i, r := range rs {
		if !r.OK() {
			return &EngineError{Index: i, Detail: r.Detail}
		}
	}
	return nil
}

//Take decodes the payload of slot i into v
func (rs ResultSet) Take(i int, v interface{}) error {
	if i < 0 || i >= len(rs) {
		return fmt.Errorf("no result slot %d in a set of %d", i, len(rs))
	}
	r := rs[i]
	if !r.OK() {
		return &EngineError{Index: i, Detail: r.Detail}
	}
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

//TakeOne decodes the first row of slot i into v. The engine answers every
//statement with an array of affected rows; TakeOne is for statements expected
//to touch exactly one record. An empty row set is reported as not found.
func (rs ResultSet) TakeOne(i int, v interface{}) error {
	var rows []json.RawMessage
	if err := rs.Take(i, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return notFound("record not found")
	}
	return json.Unmarshal(rows[0], v)
}

//EngineError reports a statement rejected or failed by the engine
type EngineError struct {
	Index  int
	Detail string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("statement %d failed: %s", e.Index, e.Detail)
}

type notFound string

func (err notFound) IsNotFound() bool {
	return true
}
func (err notFound) Error() string {
	return string(err)
}
