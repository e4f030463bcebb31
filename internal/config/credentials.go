package config

import "os"

// Environment variable names for the search API credentials.
const (
	// EnvAPIID is the environment variable holding the API ID.
	EnvAPIID = "CENSYS_API_ID"

	// EnvAPISecret is the environment variable holding the API secret.
	EnvAPISecret = "CENSYS_API_SECRET"
)

// Credentials holds the search API credential pair used for basic auth.
type Credentials struct {
	// APIID is the API identifier (basic auth username).
	APIID string

	// APISecret is the API secret (basic auth password).
	// Never log this value; the log package masks it if it does reach a
	// log call, but it should not get there in the first place.
	APISecret string
}

// LoadCredentials reads the credential pair from the environment.
// An absent or empty variable returns ErrMissingCredentials: credentials
// are validated before any network call so a misconfigured run aborts
// without producing output.
func LoadCredentials() (Credentials, error) {
	id := os.Getenv(EnvAPIID)
	secret := os.Getenv(EnvAPISecret)
	if id == "" || secret == "" {
		return Credentials{}, ErrMissingCredentials
	}
	return Credentials{APIID: id, APISecret: secret}, nil
}
