package integrationtests

import "errors"

var assertAnError = errors.New("assertion failed")
