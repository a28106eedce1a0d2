package surrealql

import (
	"strings"
)

//Transaction markers. Their exact spelling is part of the wire contract with
//the engine and must not change.
const (
	BeginTransaction  = "BEGIN TRANSACTION;"
	CommitTransaction = "COMMIT TRANSACTION;"
	CancelTransaction = "CANCEL TRANSACTION;"
)

//Compose assembles statements into one composite transaction script: the
//begin marker, each statement terminated on its own line, the commit marker.
//The script is submitted to the engine as a single unit, so the statements
//apply atomically and in order.
func Compose(statements []Statement) string {
	var b strings.Builder
	b.WriteString(BeginTransaction)
	b.WriteByte('\n')
	for _, s := range statements {
		b.WriteString(s.String())
		b.WriteString(";\n")
	}
	b.WriteString(CommitTransaction)
	return b.String()
}

//Thing renders a record id for the given table. Ids that are not plain words
//are bracketed so the engine does not split them.
func Thing(table, id string) string {
	plain := len(id) > 0
	for i := 0; i < len(id); i++ {
		if !isIdentPart(id[i]) {
			plain = false
			break
		}
	}
	if plain {
		return table + ":" + id
	}
	return table + ":⟨" + strings.ReplaceAll(id, "⟩", "") + "⟩"
}

//Quote renders s as a single-quoted string literal
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
