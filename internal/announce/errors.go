package announce

import "errors"

var (
	errTemplate = errors.New("announcement template failed")
	errAddress  = errors.New("invalid mail address")
)
