package session

import "errors"

// ErrJoinTimeout indicates a thread that did not exit within its join
// deadline.
var ErrJoinTimeout = errors.New("session: thread join timed out")
