//Package txn turns sequences of independently issued statements into atomic
//units of work against a database session.
//
//It offers two boundary styles with the same atomicity contract. A Batch
//accumulates validated statements and submits them as one composite script,
//so the engine applies all of them or none. A Tx opens an explicit
//begin/commit/rollback scope on the session for statements that must be
//issued one at a time.
//
//Neither type locks internally: a Batch belongs to the caller that created
//it, and a session must not carry more than one in-flight transactional unit
//of work at a time.
package txn

import (
	"context"

	"github.com/xdbsoft/srest/api"
	"github.com/xdbsoft/srest/surrealql"
)

//Batch accumulates statements and executes them as one atomic composite
//script. Statements are validated on entry, so a malformed statement is
//caught immediately rather than at submission time.
type Batch struct {
	statements []surrealql.Statement
}

//NewBatch returns an empty batch
func NewBatch() *Batch {
	return &Batch{}
}

//Add validates text against the statement grammar and appends its canonical
//form. On a parse failure the batch is left unchanged and the returned error
//carries the offending text.
func (b *Batch) Add(text string) error {
	s, err := surrealql.Parse(text)
	if err != nil {
		return err
	}
	b.statements = append(b.statements, s)
	return nil
}

//Render returns the composite transaction script for the current statements.
//It is a pure function of batch state and may be called repeatedly.
func (b *Batch) Render() string {
	return surrealql.Compose(b.statements)
}

//Len returns the number of accumulated statements
func (b *Batch) Len() int {
	return len(b.statements)
}

//Statements returns the accumulated canonical statements in execution order
func (b *Batch) Statements() []string {
	out := make([]string, len(b.statements))
	for i, s := range b.statements {
		out[i] = s.String()
	}
	return out
}

//Clear discards the accumulated statements without executing them
func (b *Batch) Clear() {
	b.statements = nil
}

//Execute submits the composite script to the session as a single unit. On
//success the batch is emptied, ready for the next round, and the engine's
//result set is returned with one slot per statement in accumulation order. On
//failure the statements are kept as-is: nothing can be assumed committed, and
//the caller may inspect or retry them. An empty batch is a no-op.
//
//If ctx is cancelled while the round-trip is outstanding, the outcome at the
//engine is unknown; the returned error then reports IsIndeterminate.
func (b *Batch) Execute(ctx context.Context, session api.Session) (api.ResultSet, error) {
	if len(b.statements) == 0 {
		return nil, nil
	}

	script := b.Render()
	result, err := session.Query(ctx, script)
	if err != nil {
		return nil, &ExecutionError{Script: script, Err: err, Indeterminate: ctx.Err() != nil}
	}
	if err := result.Check(); err != nil {
		return nil, &ExecutionError{Script: script, Err: err}
	}

	b.statements = nil
	return result, nil
}
