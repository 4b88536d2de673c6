package main

import "errors"

var (
	errInvalidArgCount  = errors.New("wrong number of arguments")
	errInvalidFlagValue = errors.New("invalid flag value")
)
