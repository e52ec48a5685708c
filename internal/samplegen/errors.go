package samplegen

import "errors"

// ErrRefused is returned when the server refuses the generated file.
var ErrRefused = errors.New("file refused by server")
