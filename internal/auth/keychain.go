package auth

// AnonymousScheme is the keychain selection for unauthenticated requests.
const AnonymousScheme = "anonymous"

// Keychain holds the credentials entered per scheme and the scheme selected
// for the next request.
type Keychain struct {
	Selected    string
	Credentials map[string]Credentials
}

func NewKeychain() *Keychain {
	return &Keychain{
		Selected:    AnonymousScheme,
		Credentials: make(map[string]Credentials),
	}
}

// Set stores credentials for scheme.
func (k *Keychain) Set(scheme string, credentials Credentials) {
	if k.Credentials == nil {
		k.Credentials = make(map[string]Credentials)
	}
	k.Credentials[scheme] = credentials
}

// Select marks scheme as the one to use. An empty name selects anonymous.
func (k *Keychain) Select(scheme string) {
	if scheme == "" {
		scheme = AnonymousScheme
	}
	k.Selected = scheme
}

func (k *Keychain) IsAnonymous() bool {
	return k.Selected == "" || k.Selected == AnonymousScheme
}

// SelectedCredentials returns the credentials of the selected scheme.
func (k *Keychain) SelectedCredentials() Credentials {
	return k.Credentials[k.Selected]
}
