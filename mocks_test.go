package srest

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/xdbsoft/srest/api"
)

type mockedAuthenticator struct{}

func (a mockedAuthenticator) Authenticate(r *http.Request) (api.User, error) {
	formBearer := r.FormValue("auth")
	if len(formBearer) == 0 {
		return api.User{}, nil
	}

	tokens := strings.Split(formBearer, "|")
	if len(tokens) != 3 {
		return api.User{}, notAuthorizedError{}
	}

	return api.User{
		ID:    tokens[0],
		Name:  tokens[1],
		Email: tokens[2],
	}, nil
}

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.Out = ioutil.Discard
	return log
}

type mockedRecord struct {
	ID   string
	Name string
}

//mockedSession emulates the engine for the statements this server produces.
//A submitted script is applied atomically: statements run against a copy of
//the store, which replaces it only if every statement succeeds.
type mockedSession struct {
	Records []mockedRecord
	FailOn  string // statements containing this substring fail
	Scripts []string
}

var (
	reCreate    = regexp.MustCompile(`^CREATE person:([^ ]+) CONTENT \{ name: '((?:[^'\\]|\\.)*)' \}$`)
	reSelectOne = regexp.MustCompile(`^SELECT \* FROM person WHERE id = person:([^ ]+)$`)
	reSelectAll = regexp.MustCompile(`^SELECT \* FROM person$`)
	reUpdate    = regexp.MustCompile(`^UPDATE person:([^ ]+) CONTENT \{ name: '((?:[^'\\]|\\.)*)' \}$`)
	reDeleteOne = regexp.MustCompile(`^DELETE person:([^ ]+) RETURN BEFORE$`)
	reDeleteAll = regexp.MustCompile(`^DELETE person RETURN BEFORE$`)
)

func unescape(s string) string {
	r := strings.NewReplacer(`\'`, `'`, `\\`, `\`)
	return r.Replace(s)
}

func rows(records ...mockedRecord) api.Result {
	people := []api.Person{}
	for _, r := range records {
		people = append(people, api.Person{Name: r.Name})
	}
	b, _ := json.Marshal(people)
	return api.Result{Status: api.StatusOK, Data: b}
}

func (m *mockedSession) Query(ctx context.Context, script string) (api.ResultSet, error) {
	m.Scripts = append(m.Scripts, script)

	store := append([]mockedRecord{}, m.Records...)

	var results api.ResultSet
	failed := false

	for _, line := range strings.Split(script, "\n") {
		statement := strings.TrimSuffix(strings.TrimSpace(line), ";")
		if statement == "" ||
			statement == "BEGIN TRANSACTION" ||
			statement == "COMMIT TRANSACTION" ||
			statement == "CANCEL TRANSACTION" {
			continue
		}

		if m.FailOn != "" && strings.Contains(statement, m.FailOn) {
			results = append(results, api.Result{Status: api.StatusErr, Detail: "forced failure"})
			failed = true
			continue
		}

		switch {
		case reCreate.MatchString(statement):
			g := reCreate.FindStringSubmatch(statement)
			record := mockedRecord{ID: g[1], Name: unescape(g[2])}
			store = append(store, record)
			results = append(results, rows(record))

		case reSelectOne.MatchString(statement):
			g := reSelectOne.FindStringSubmatch(statement)
			var found []mockedRecord
			for _, r := range store {
				if r.ID == g[1] {
					found = append(found, r)
				}
			}
			results = append(results, rows(found...))

		case reSelectAll.MatchString(statement):
			results = append(results, rows(store...))

		case reUpdate.MatchString(statement):
			g := reUpdate.FindStringSubmatch(statement)
			var updated []mockedRecord
			for i, r := range store {
				if r.ID == g[1] {
					store[i].Name = unescape(g[2])
					updated = append(updated, store[i])
				}
			}
			results = append(results, rows(updated...))

		case reDeleteOne.MatchString(statement):
			g := reDeleteOne.FindStringSubmatch(statement)
			var kept, removed []mockedRecord
			for _, r := range store {
				if r.ID == g[1] {
					removed = append(removed, r)
				} else {
					kept = append(kept, r)
				}
			}
			store = kept
			results = append(results, rows(removed...))

		case reDeleteAll.MatchString(statement):
			removed := store
			store = nil
			results = append(results, rows(removed...))

		default:
			results = append(results, api.Result{Status: api.StatusErr, Detail: "unsupported statement: " + statement})
			failed = true
		}
	}

	if !failed {
		m.Records = store
	}

	return results, nil
}
