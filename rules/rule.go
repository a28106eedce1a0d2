//Package rules evaluates configured access rules against request paths.
//
//A rule matches a path pattern in which bracketed segments ({id}) bind path
//variables, and allows a set of methods, optionally guarded by a gript
//condition over the path variables and the authenticated user. A request that
//no rule matches is allowed: deployments restrict endpoints by listing rules
//for them.
package rules

type Rule struct {
	Path  string  `json:"path"`
	Allow []Allow `json:"allow"`
}

type Allow struct {
	Methods []Method `json:"methods"`
	If      string   `json:"if"`
}

type Method string

const (
	READ   Method = "READ"
	WRITE  Method = "WRITE"
	DELETE Method = "DELETE"
)
