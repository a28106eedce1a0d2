package rules

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xdbsoft/gript"

	"github.com/xdbsoft/srest/api"
)

type Checker struct{}

func isVariable(s string) (bool, string) {

	if len(s) >= 3 {
		if s[0] == '{' && s[len(s)-1] == '}' {
			return true, s[1 : len(s)-1]
		}
	}
	return false, ""
}

func checkCondition(condition string, variables map[string]interface{}) (bool, error) {

	r, err := gript.Eval(condition, variables)
	if err != nil {
		return false, err
	}
	result, ok := r.(bool)
	if !ok {
		return false, errors.New("Invalid condition: result is not boolean")
	}
	return result, nil
}

func matchPath(pattern string, target []string) (bool, map[string]interface{}) {

	path := strings.Split(pattern, "/")
	if len(path) != len(target) {
		return false, nil
	}

	pathVariables := make(map[string]interface{})
	for i := range path {
		if isVar, name := isVariable(path[i]); isVar {
			pathVariables[name] = target[i]
		} else if path[i] != target[i] {
			return false, nil
		}
	}
	return true, pathVariables
}

//Check evaluates the first rule matching target. The method is allowed if an
//Allow entry lists it and its condition, if any, holds for the path variables
//and the user.
func (c Checker) Check(rules []Rule, target []string, user api.User, method Method) (bool, error) {

	for _, rule := range rules {

		match, pathVariables := matchPath(rule.Path, target)
		if !match {
			continue
		}

		variables := map[string]interface{}{
			"path": pathVariables,
			"user": map[string]interface{}{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
			},
		}

		for _, a := range rule.Allow {

			found := false
			for _, am := range a.Methods {
				if am == method {
					found = true
					break
				}
			}
			if !found {
				continue
			}

			if len(a.If) == 0 {
				return true, nil
			}
			return checkCondition(a.If, variables)
		}

		return false, nil
	}

	return true, nil
}
