package queue

import "errors"

// ErrNothingServing is returned by Next, Skip and Recall when the session has
// no pinned appointment.
var ErrNothingServing = errors.New("queue: nothing is being served")

// ErrNoPhoneOnRecord is returned by Recall when the serving appointment has
// no phone number.
var ErrNoPhoneOnRecord = errors.New("queue: no phone on record")
