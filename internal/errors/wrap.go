package errors

import "fmt"

// Wrap prefixes err with msg, keeping the chain for errors.Is. A nil err
// stays nil, so it can wrap a call result inline:
//
//	return errors.Wrap(v.Unmarshal(&cfg), "failed to unmarshal config")
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted prefix.
func Wrapf(err error, format string, args ...any) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
