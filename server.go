//Package srest exposes person records held in a SurrealDB instance over a
//small REST interface, including atomic batch operations built on the txn
//package.
package srest

import (
	"context"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/xdbsoft/srest/api"
	"github.com/xdbsoft/srest/oidc"
	"github.com/xdbsoft/srest/rules"
	"github.com/xdbsoft/srest/surreal"
	"github.com/xdbsoft/srest/surrealql"
	"github.com/xdbsoft/srest/txn"
)

// Server instantiates a new srest server
func Server(cfg Config, log logrus.FieldLogger) (http.Handler, error) {

	session := surreal.New(cfg.Database, log)
	if err := session.Ping(context.Background()); err != nil {
		return nil, err
	}

	var a api.Authenticator
	if len(cfg.OpenIDConnectIssuer) > 0 {
		var err error
		a, err = oidc.New(cfg.OpenIDConnectIssuer, log)
		if err != nil {
			return nil, err
		}
	}

	s := server{
		Session:       session,
		Authenticator: a,
		Rules:         cfg.Rules,
		RuleChecker:   rules.Checker{},
		Log:           log,
	}

	return &s, nil
}

type server struct {
	Session       api.Session
	Authenticator api.Authenticator
	Rules         []rules.Rule
	RuleChecker   rules.Checker
	Log           logrus.FieldLogger
}

var methods = map[string]rules.Method{
	"GET":    rules.READ,
	"POST":   rules.WRITE,
	"PUT":    rules.WRITE,
	"DELETE": rules.DELETE,
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	user, err := s.authenticate(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	target := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	s.Log.WithFields(logrus.Fields{
		"method": r.Method,
		"target": strings.Join(target, "/"),
		"user":   user.ID,
	}).Info("request")

	if err := s.checkIsAuthorized(target, user, r.Method); err != nil {
		s.handleError(w, r, err)
		return
	}

	ctx := r.Context()

	var data interface{}

	switch {
	case len(target) == 1 && target[0] == "health_check" && r.Method == "GET":
		w.WriteHeader(http.StatusOK)
		return

	case len(target) == 1 && target[0] == "people" && r.Method == "GET":
		data, err = s.listPeople(ctx)

	case len(target) == 2 && target[0] == "person" && target[1] == "batch_up" && r.Method == "POST":
		var people []api.Person
		if err := getPayload(r, &people); err != nil {
			s.handleError(w, r, err)
			return
		}
		data, err = s.batchUp(ctx, people)

	case len(target) == 2 && target[0] == "person" && target[1] == "batch_down" && r.Method == "DELETE":
		data, err = s.batchDown(ctx)

	case len(target) == 2 && target[0] == "person" && len(target[1]) > 0:
		id := target[1]
		switch r.Method {
		case "GET":
			data, err = s.readPerson(ctx, id)
		case "POST":
			var person api.Person
			if err := getPayload(r, &person); err != nil {
				s.handleError(w, r, err)
				return
			}
			data, err = s.createPerson(ctx, id, person)
		case "PUT":
			var person api.Person
			if err := getPayload(r, &person); err != nil {
				s.handleError(w, r, err)
				return
			}
			data, err = s.updatePerson(ctx, id, person)
		case "DELETE":
			data, err = s.deletePerson(ctx, id)
		default:
			s.handleError(w, r, badRequest("unsupported method"))
			return
		}

	default:
		s.handleError(w, r, badRequest("unknown path"))
		return
	}

	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.handleResponse(w, r, data)
}

func (s *server) authenticate(r *http.Request) (api.User, error) {
	if s.Authenticator == nil {
		return api.User{}, nil
	}

	return s.Authenticator.Authenticate(r)
}

func (s *server) checkIsAuthorized(target []string, user api.User, httpMethod string) error {

	method, ok := methods[httpMethod]
	if !ok {
		return badRequest("unsupported method")
	}

	allowed, err := s.RuleChecker.Check(s.Rules, target, user, method)
	if err != nil {
		return err
	}
	if !allowed {
		return notAuthorizedError{Target: strings.Join(target, "/")}
	}
	return nil
}

func getPayload(r *http.Request, payload interface{}) error {
	if r.Body != nil {
		defer r.Body.Close()
		d := json.NewDecoder(r.Body)
		err := d.Decode(&payload)
		if err != nil && err != io.EOF {
			return badRequest(errors.Wrap(err, "Unable to decode JSON body").Error())
		}
	}
	return nil
}

//query validates a single statement and submits it through the session
func (s *server) query(ctx context.Context, text string) (api.ResultSet, error) {
	statement, err := surrealql.Parse(text)
	if err != nil {
		return nil, err
	}
	return s.Session.Query(ctx, statement.String()+";")
}

func (s *server) createPerson(ctx context.Context, id string, person api.Person) (api.Person, error) {

	sql := fmt.Sprintf("CREATE %s CONTENT { name: %s }", surrealql.Thing(api.PersonTable, id), surrealql.Quote(person.Name))

	result, err := s.query(ctx, sql)
	if err != nil {
		return api.Person{}, err
	}

	var created api.Person
	if err := result.TakeOne(0, &created); err != nil {
		return api.Person{}, err
	}
	return created, nil
}

func (s *server) readPerson(ctx context.Context, id string) (api.Person, error) {

	sql := fmt.Sprintf("SELECT * FROM %s WHERE id = %s", api.PersonTable, surrealql.Thing(api.PersonTable, id))

	result, err := s.query(ctx, sql)
	if err != nil {
		return api.Person{}, err
	}

	var person api.Person
	if err := result.TakeOne(0, &person); err != nil {
		return api.Person{}, err
	}
	return person, nil
}

func (s *server) updatePerson(ctx context.Context, id string, person api.Person) (api.Person, error) {

	sql := fmt.Sprintf("UPDATE %s CONTENT { name: %s }", surrealql.Thing(api.PersonTable, id), surrealql.Quote(person.Name))

	result, err := s.query(ctx, sql)
	if err != nil {
		return api.Person{}, err
	}

	var updated api.Person
	if err := result.TakeOne(0, &updated); err != nil {
		return api.Person{}, err
	}
	return updated, nil
}

func (s *server) deletePerson(ctx context.Context, id string) (api.Person, error) {

	sql := fmt.Sprintf("DELETE %s RETURN BEFORE", surrealql.Thing(api.PersonTable, id))

	result, err := s.query(ctx, sql)
	if err != nil {
		return api.Person{}, err
	}

	var removed api.Person
	if err := result.TakeOne(0, &removed); err != nil {
		return api.Person{}, err
	}
	return removed, nil
}

func (s *server) listPeople(ctx context.Context) ([]api.Person, error) {

	sql := fmt.Sprintf("SELECT * FROM %s", api.PersonTable)

	result, err := s.query(ctx, sql)
	if err != nil {
		return nil, err
	}

	people := []api.Person{}
	if err := result.Take(0, &people); err != nil {
		return nil, err
	}
	return people, nil
}

//batchUp creates every given person in one atomic unit: the statements are
//accumulated, validated, and submitted as a single composite script, so
//either all records are created or none.
func (s *server) batchUp(ctx context.Context, people []api.Person) ([]api.Person, error) {

	batch := txn.NewBatch()
	for _, person := range people {
		sql := fmt.Sprintf("CREATE %s CONTENT { name: %s }", surrealql.Thing(api.PersonTable, api.NextID()), surrealql.Quote(person.Name))
		if err := batch.Add(sql); err != nil {
			return nil, err
		}
	}

	if _, err := batch.Execute(ctx, s.Session); err != nil {
		return nil, err
	}

	return s.listPeople(ctx)
}

func (s *server) batchDown(ctx context.Context) ([]api.Person, error) {

	sql := fmt.Sprintf("DELETE %s RETURN BEFORE", api.PersonTable)

	result, err := s.query(ctx, sql)
	if err != nil {
		return nil, err
	}

	removed := []api.Person{}
	if err := result.Take(0, &removed); err != nil {
		return nil, err
	}
	return removed, nil
}

func computeEtag(data interface{}) (string, error) {

	h := sha1.New()
	enc := gob.NewEncoder(h)
	err := enc.Encode(data)
	if err != nil {
		return "", err
	}

	return `"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}

func (s *server) handleResponse(w http.ResponseWriter, r *http.Request, data interface{}) {

	if data == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// Handle ETag / If-None-Match
	etag, err := computeEtag(data)
	if err == nil && len(etag) > 0 {
		w.Header().Set("ETag", etag)

		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.Header().Add("Content-Type", "application/json")

	statusCode := http.StatusOK
	if r.Method == "POST" {
		statusCode = http.StatusAccepted
	}
	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)

	if r.FormValue("print") == "pretty" {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(data); err != nil {
		s.Log.WithError(err).Error("unable to encode response")
	}
}

func (s *server) handleError(w http.ResponseWriter, r *http.Request, err error) {

	s.Log.WithError(err).WithField("uri", r.RequestURI).Warn("request failed")

	cause := errors.Cause(err)

	if IsBadRequest(cause) || IsParseError(cause) {
		http.Error(w, cause.Error(), http.StatusBadRequest)
		return
	}

	if IsNotAuthorized(cause) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if IsNotFound(cause) {
		http.Error(w, "Data not found", http.StatusNotFound)
		return
	}

	if txn.IsIndeterminate(err) {
		http.Error(w, "Outcome unknown, verify before retrying", http.StatusBadGateway)
		return
	}

	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
