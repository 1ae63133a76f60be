package session

import "errors"

// ErrNotSignedIn is returned by operations that require an identity when
// no user is signed in.
var ErrNotSignedIn = errors.New("not signed in")
