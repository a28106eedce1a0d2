package srest

import (
	"github.com/xdbsoft/srest/rules"
	"github.com/xdbsoft/srest/surreal"
)

// Config contains all required information for the initialisation of a srest server
type Config struct {
	OpenIDConnectIssuer string
	Database            surreal.Settings
	Rules               []rules.Rule
	LogLevel            string `default:"info"`
}
