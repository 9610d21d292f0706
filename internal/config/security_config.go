package config

type SecurityConfig interface {
	GetSecureCookies() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSecureCookies reports whether session cookies carry the Secure
// attribute. Only local development over plain HTTP turns it off.
func (Security) GetSecureCookies() bool {
	return EnvVars{}.GetEnv() != "DEV"
}
