package macaddr

import "github.com/spf13/pflag"

var _ pflag.Value = (*SecureOnFlag)(nil)

// SecureOnFlag is a pflag.Value for an optional SecureOn token. Value stays
// nil until the flag is set.
type SecureOnFlag struct {
	Value *SecureOn
}

// String implements pflag.Value.
func (f *SecureOnFlag) String() string {
	if f.Value == nil {
		return ""
	}
	return f.Value.String()
}

// Set implements pflag.Value.
func (f *SecureOnFlag) Set(s string) error {
	v, err := ParseSecureOn(s)
	if err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// Type implements pflag.Value.
func (f *SecureOnFlag) Type() string {
	return "token"
}
