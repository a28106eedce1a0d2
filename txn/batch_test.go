package txn

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/xdbsoft/srest/api"
)

type stubReply struct {
	result api.ResultSet
	err    error
}

type stubSession struct {
	scripts []string
	replies []stubReply
}

func (s *stubSession) Query(ctx context.Context, script string) (api.ResultSet, error) {
	s.scripts = append(s.scripts, script)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.replies) == 0 {
		return nil, errors.New("no scripted reply")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.result, r.err
}

func okResults(n int) api.ResultSet {
	rs := make(api.ResultSet, n)
	for i := range rs {
		rs[i] = api.Result{Status: api.StatusOK, Data: []byte(`[]`)}
	}
	return rs
}

func addAll(t *testing.T, b *Batch, statements ...string) {
	t.Helper()
	for _, s := range statements {
		if err := b.Add(s); err != nil {
			t.Fatalf("Add(%q): %v", s, err)
		}
	}
}

func TestBatch_Add_RejectsBadStatement(t *testing.T) {

	b := NewBatch()

	if err := b.Add("not a valid statement !!"); err == nil {
		t.Fatal("expected a parse error")
	}
	if b.Len() != 0 {
		t.Errorf("rejected statement entered the batch, Len = %d", b.Len())
	}

	// the batch must still accept valid statements afterwards
	if err := b.Add("CREATE person:a CONTENT { name: 'a' }"); err != nil {
		t.Fatalf("valid statement rejected after a parse error: %v", err)
	}
	if b.Len() != 1 {
		t.Errorf("expected 1 accumulated statement, got %d", b.Len())
	}
}

func TestBatch_Render_RoundTrip(t *testing.T) {

	b := NewBatch()
	statements := []string{
		"CREATE person:a CONTENT { name: 'a' }",
		"SELECT * FROM person",
		"DELETE person:a RETURN BEFORE",
	}
	addAll(t, b, statements...)

	script := b.Render()

	lines := strings.Split(script, "\n")
	if lines[0] != "BEGIN TRANSACTION;" {
		t.Errorf("script does not start with the begin marker: %q", lines[0])
	}
	if lines[len(lines)-1] != "COMMIT TRANSACTION;" {
		t.Errorf("script does not end with the commit marker: %q", lines[len(lines)-1])
	}
	for i, s := range statements {
		if lines[i+1] != s+";" {
			t.Errorf("statement %d: expected %q, got %q", i, s+";", lines[i+1])
		}
	}

	// rendering is repeatable and has no side effects
	if again := b.Render(); again != script {
		t.Error("second Render differs from the first")
	}
	if b.Len() != len(statements) {
		t.Errorf("Render changed the batch, Len = %d", b.Len())
	}
}

func TestBatch_Execute_ClearsOnSuccess(t *testing.T) {

	session := &stubSession{replies: []stubReply{{result: okResults(3)}}}

	b := NewBatch()
	addAll(t, b,
		"CREATE person:a CONTENT { name: 'a' }",
		"CREATE person:b CONTENT { name: 'b' }",
		"CREATE person:c CONTENT { name: 'c' }",
	)
	script := b.Render()

	result, err := b.Execute(context.Background(), session)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result) != 3 {
		t.Errorf("expected 3 result slots, got %d", len(result))
	}
	if b.Len() != 0 {
		t.Errorf("batch not cleared after success, Len = %d", b.Len())
	}
	if len(session.scripts) != 1 || session.scripts[0] != script {
		t.Errorf("expected the rendered script to be submitted once, got %v", session.scripts)
	}

	// an immediate re-run must not re-submit the previous statements
	result, err = b.Execute(context.Background(), session)
	if result != nil || err != nil {
		t.Errorf("empty batch should be a no-op, got (%v, %v)", result, err)
	}
	if len(session.scripts) != 1 {
		t.Errorf("empty batch reached the session: %v", session.scripts)
	}
}

func TestBatch_Execute_KeepsStatementsOnFailure(t *testing.T) {

	session := &stubSession{replies: []stubReply{
		{err: errors.New("connection reset")},
		{result: okResults(2)},
	}}

	b := NewBatch()
	addAll(t, b,
		"CREATE person:a CONTENT { name: 'a' }",
		"CREATE person:b CONTENT { name: 'b' }",
	)
	before := b.Statements()

	_, err := b.Execute(context.Background(), session)
	if err == nil {
		t.Fatal("expected an execution error")
	}
	if IsIndeterminate(err) {
		t.Error("plain transport failure should not be indeterminate")
	}

	after := b.Statements()
	if len(after) != len(before) {
		t.Fatalf("batch changed after failure: %v", after)
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("statement %d changed after failure: %q -> %q", i, before[i], after[i])
		}
	}

	// a retry submits the identical script and clears on success
	if _, err := b.Execute(context.Background(), session); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if session.scripts[0] != session.scripts[1] {
		t.Error("retry submitted a different script")
	}
	if b.Len() != 0 {
		t.Errorf("batch not cleared after successful retry, Len = %d", b.Len())
	}
}

func TestBatch_Execute_EngineRejection(t *testing.T) {

	session := &stubSession{replies: []stubReply{
		{result: api.ResultSet{
			{Status: api.StatusOK, Data: []byte(`[]`)},
			{Status: api.StatusErr, Detail: "index violation"},
		}},
	}}

	b := NewBatch()
	addAll(t, b,
		"CREATE person:a CONTENT { name: 'a' }",
		"CREATE person:a CONTENT { name: 'a' }",
	)

	_, err := b.Execute(context.Background(), session)
	if err == nil {
		t.Fatal("expected an execution error")
	}
	if !strings.Contains(err.Error(), "index violation") {
		t.Errorf("error does not carry the engine detail: %v", err)
	}
	if b.Len() != 2 {
		t.Errorf("batch changed after engine rejection, Len = %d", b.Len())
	}
}

func TestBatch_Execute_Indeterminate(t *testing.T) {

	session := &stubSession{}

	b := NewBatch()
	addAll(t, b, "CREATE person:a CONTENT { name: 'a' }")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Execute(ctx, session)
	if err == nil {
		t.Fatal("expected an execution error")
	}
	if !IsIndeterminate(err) {
		t.Errorf("cancelled execution should be indeterminate: %v", err)
	}
	if b.Len() != 1 {
		t.Errorf("batch changed after indeterminate outcome, Len = %d", b.Len())
	}
}

func TestBatch_Clear(t *testing.T) {

	b := NewBatch()
	addAll(t, b, "CREATE person:a CONTENT { name: 'a' }")

	b.Clear()

	if b.Len() != 0 {
		t.Errorf("expected an empty batch, Len = %d", b.Len())
	}

	session := &stubSession{}
	if result, err := b.Execute(context.Background(), session); result != nil || err != nil {
		t.Errorf("cleared batch should be a no-op, got (%v, %v)", result, err)
	}
	if len(session.scripts) != 0 {
		t.Errorf("cleared batch reached the session: %v", session.scripts)
	}
}
