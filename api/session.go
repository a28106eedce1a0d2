package api

import (
	"context"
)

//Session describes an established channel to the database engine.
//
//Query submits a textual script and waits for the engine's answer. The engine
//returns one result slot per statement in the submitted script; transaction
//markers (BEGIN/COMMIT/CANCEL) do not produce slots of their own. A Session is
//a single logical connection: callers running transactional units of work on a
//shared Session must serialize access to it.
type Session interface {
	Query(ctx context.Context, script string) (ResultSet, error)
}
