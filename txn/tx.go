package txn

import (
	"context"

	"github.com/xdbsoft/srest/api"
	"github.com/xdbsoft/srest/surrealql"
)

//State is the lifecycle position of a transaction handle
type State int

const (
	Unopened State = iota
	Open
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Unopened:
		return "unopened"
	case Open:
		return "open"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled back"
	}
	return "unknown"
}

//Tx is an explicitly-scoped atomic unit of work on a session. It is produced
//by Begin and moves through Open into exactly one of the terminal states
//Committed or RolledBack; a finished handle cannot be revived, each unit of
//work begins a fresh one.
//
//The handle borrows the session, it does not own it. Statements sent through
//the session while the handle is Open belong to the transaction; the boundary
//is established by handle state alone, with no wrapping syntax.
type Tx struct {
	session api.Session
	state   State
}

//Begin opens a transaction on the session by submitting the begin marker. On
//failure no handle is produced.
func Begin(ctx context.Context, session api.Session) (*Tx, error) {
	result, err := session.Query(ctx, surrealql.BeginTransaction)
	if err != nil {
		return nil, &TxError{Op: "begin", Err: err, Indeterminate: ctx.Err() != nil}
	}
	if err := result.Check(); err != nil {
		return nil, &TxError{Op: "begin", Err: err}
	}
	return &Tx{session: session, state: Open}, nil
}

//State returns the handle's lifecycle position
func (tx *Tx) State() State {
	return tx.state
}

//Open reports whether the handle currently scopes a transaction
func (tx *Tx) Open() bool {
	return tx.state == Open
}

//Exec validates one statement and submits it through the bound session as
//part of the open transaction. Using a handle that is not Open is a caller
//contract violation and fails without touching the engine.
func (tx *Tx) Exec(ctx context.Context, text string) (api.ResultSet, error) {
	if tx.state != Open {
		return nil, &StateError{Op: "execute in", State: tx.state}
	}
	s, err := surrealql.Parse(text)
	if err != nil {
		return nil, err
	}
	result, err := tx.session.Query(ctx, s.String()+";")
	if err != nil {
		return nil, &ExecutionError{Script: s.String(), Err: err, Indeterminate: ctx.Err() != nil}
	}
	if err := result.Check(); err != nil {
		return nil, &ExecutionError{Script: s.String(), Err: err}
	}
	return result, nil
}

//Commit submits the commit marker and finishes the transaction. On an engine
//or transport failure the handle stays as it was and the error is fatal for
//this unit of work: partial application cannot be assumed undone, and a
//commit is never retried here since retrying could double-apply effects.
func (tx *Tx) Commit(ctx context.Context) error {
	if tx.state != Open {
		return &StateError{Op: "commit", State: tx.state}
	}
	result, err := tx.session.Query(ctx, surrealql.CommitTransaction)
	if err != nil {
		return &TxError{Op: "commit", Err: err, Indeterminate: ctx.Err() != nil}
	}
	if err := result.Check(); err != nil {
		return &TxError{Op: "commit", Err: err}
	}
	tx.state = Committed
	return nil
}

//Rollback submits the cancel marker, discarding the transaction's effects
func (tx *Tx) Rollback(ctx context.Context) error {
	if tx.state != Open {
		return &StateError{Op: "roll back", State: tx.state}
	}
	result, err := tx.session.Query(ctx, surrealql.CancelTransaction)
	if err != nil {
		return &TxError{Op: "rollback", Err: err, Indeterminate: ctx.Err() != nil}
	}
	if err := result.Check(); err != nil {
		return &TxError{Op: "rollback", Err: err}
	}
	tx.state = RolledBack
	return nil
}
