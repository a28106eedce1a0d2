package main

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/xdbsoft/srest"
	"github.com/xdbsoft/srest/rules"
	"github.com/xdbsoft/srest/surreal"
)

func main() {

	cfg := srest.Config{
		OpenIDConnectIssuer: "https://login.okiapps.com/", // You may use any OIDC provider (Google, Github, or self hosted)
		Database: surreal.Settings{
			Host:      "localhost",
			Port:      8000,
			Username:  "surreal",
			Password:  "password",
			Namespace: "namespace",
			Database:  "database",
		},
		Rules: []rules.Rule{
			{
				// anybody may read people, only the record's owner may change it
				Path: "person/{id}",
				Allow: []rules.Allow{
					{
						Methods: []rules.Method{rules.READ},
					},
					{
						Methods: []rules.Method{rules.WRITE, rules.DELETE},
						If:      `path.id == user.id`,
					},
				},
			},
		},
	}

	log := logrus.New()

	s, err := srest.Server(cfg, log)
	if err != nil {
		log.Fatal(err)
	}

	http.Handle("/", s)

	log.Fatal(http.ListenAndServe(":8080", nil))
}
