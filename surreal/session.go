//Package surreal implements api.Session over SurrealDB's HTTP endpoint.
package surreal

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/xdbsoft/srest/api"
)

//Settings holds the connection parameters of an engine instance
type Settings struct {
	Host       string `default:"localhost"`
	Port       int    `default:"8000"`
	Username   string `default:"surreal"`
	Password   string `default:"password"`
	Namespace  string `default:"namespace"`
	Database   string `default:"database"`
	RequireSSL bool
}

func (s Settings) baseURL() string {
	scheme := "http"
	if s.RequireSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, s.Host, s.Port)
}

//Session is an established channel to one namespace/database of a SurrealDB
//instance. Scripts are submitted to the engine's /sql endpoint, which answers
//with one result slot per statement.
type Session struct {
	settings Settings
	client   *http.Client
	log      logrus.FieldLogger
}

//New builds a session from the given settings. The logger is injected by the
//caller; the session never configures process-wide logging itself.
func New(settings Settings, log logrus.FieldLogger) *Session {
	return &Session{
		settings: settings,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}
}

//Query submits a script and decodes the engine's positional answer. The
//request is bound to ctx; a cancellation mid-flight leaves the engine-side
//outcome unknown, which the transaction layer surfaces to its callers.
func (s *Session) Query(ctx context.Context, script string) (api.ResultSet, error) {

	req, err := http.NewRequest("POST", s.settings.baseURL()+"/sql", strings.NewReader(script))
	if err != nil {
		return nil, errors.Wrap(err, "unable to build query request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("NS", s.settings.Namespace)
	req.Header.Set("DB", s.settings.Database)
	req.SetBasicAuth(s.settings.Username, s.settings.Password)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "query submission failed")
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read engine response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("engine rejected script: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var result api.ResultSet
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrap(err, "unable to decode engine response")
	}

	s.log.WithFields(logrus.Fields{
		"slots": len(result),
		"bytes": len(script),
	}).Debug("script executed")

	return result, nil
}

//Ping checks that the engine is reachable and healthy
func (s *Session) Ping(ctx context.Context) error {

	req, err := http.NewRequest("GET", s.settings.baseURL()+"/health", nil)
	if err != nil {
		return errors.Wrap(err, "unable to build health request")
	}
	req = req.WithContext(ctx)

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "engine unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("engine unhealthy: %s", resp.Status)
	}
	return nil
}
