package access

import (
	"crypto/subtle"
	"net/http"

	"github.com/umakantv/go-utils/httpserver"
)

// AuthType is the httpserver route auth type for key-protected routes.
const AuthType = "apikey"

// Validator decides whether a request carries an acceptable service credential.
// It says nothing about which user is signed in.
type Validator interface {
	Validate(r *http.Request) bool
}

// KeySet accepts any of a set of per-client keys read from one header.
// Revoking one client means removing its key; the others keep working.
type KeySet struct {
	header string
	keys   map[string]string // key -> client
}

func NewKeySet(header string, keys map[string]string) *KeySet {
	if header == "" {
		header = "X-API-Key"
	}
	copied := make(map[string]string, len(keys))
	for k, v := range keys {
		copied[k] = v
	}
	return &KeySet{header: header, keys: copied}
}

func (k *KeySet) Validate(r *http.Request) bool {
	_, ok := k.Client(r)
	return ok
}

// Client returns the name of the client whose key the request carries.
// Every configured key is compared so timing does not reveal which one matched.
func (k *KeySet) Client(r *http.Request) (string, bool) {
	presented := r.Header.Get(k.header)
	if presented == "" {
		return "", false
	}

	client, found := "", false
	for key, name := range k.keys {
		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) == 1 {
			client, found = name, true
		}
	}
	return client, found
}

// CheckAuth adapts a Validator to the httpserver authentication hook, which
// runs it for every route not registered with AuthType "none" and answers 401
// itself when it fails.
func CheckAuth(v Validator) httpserver.AuthCallback {
	return func(r *http.Request) (bool, httpserver.RequestAuth) {
		client := "api-key-client"
		if named, ok := v.(interface {
			Client(*http.Request) (string, bool)
		}); ok {
			name, found := named.Client(r)
			if !found {
				return false, httpserver.RequestAuth{}
			}
			client = name
		} else if !v.Validate(r) {
			return false, httpserver.RequestAuth{}
		}

		return true, httpserver.RequestAuth{
			Type:   AuthType,
			Client: client,
			Claims: map[string]interface{}{"client": client},
		}
	}
}
