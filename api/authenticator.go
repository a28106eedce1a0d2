package api

import (
	"net/http"
)

//Authenticator describes the interface that a service authenticating an HTTP request should implement
type Authenticator interface {
	Authenticate(r *http.Request) (User, error)
}

//User identifies the authenticated caller of a request. The zero value is the
//anonymous user.
type User struct {
	ID    string
	Name  string
	Email string
}
