//Package oidc authenticates HTTP requests carrying OpenID Connect ID tokens.
package oidc

import (
	"context"
	"net/http"

	"github.com/coreos/go-oidc"
	"github.com/sirupsen/logrus"

	"github.com/xdbsoft/srest/api"
)

//New builds an authenticator verifying tokens issued by the given provider
func New(issuer string, log logrus.FieldLogger) (api.Authenticator, error) {

	provider, err := oidc.NewProvider(context.Background(), issuer)
	if err != nil {
		return nil, err
	}

	config := oidc.Config{
		SkipClientIDCheck: true,
	}

	return &authenticator{
		verifier: provider.Verifier(&config),
		log:      log,
	}, nil
}

type authenticator struct {
	verifier *oidc.IDTokenVerifier
	log      logrus.FieldLogger
}

//rawIDToken extracts the bearer token from the Authorization header, falling
//back to the auth form parameter
func rawIDToken(r *http.Request) string {

	bearer := r.Header.Get("Authorization")
	if len(bearer) == 0 {
		if form := r.FormValue("auth"); len(form) > 0 {
			bearer = "Bearer " + form
		}
	}
	if len(bearer) < len("Bearer ") {
		return ""
	}
	return bearer[len("Bearer "):]
}

//Authenticate verifies the request's token, if any. A request without a token
//is the anonymous user, not an error.
func (a *authenticator) Authenticate(r *http.Request) (api.User, error) {

	raw := rawIDToken(r)
	if len(raw) == 0 {
		return api.User{}, nil
	}

	idToken, err := a.verifier.Verify(r.Context(), raw)
	if err != nil {
		a.log.WithError(err).Warn("token verification failed")
		return api.User{}, notAuthorizedError{}
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return api.User{}, err
	}

	return api.User{
		ID:    idToken.Subject,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}

type notAuthorizedError struct {
}

func (err notAuthorizedError) Error() string {
	return "invalid credential"
}

func (err notAuthorizedError) IsNotAuthorized() bool {
	return true
}
