package util

import "fmt"

// HandlePanicInModuleWithError recovers a panic in module and turns it into
// an error, assigning it to *err. Deferred at the top of a function that
// returns an error.
func HandlePanicInModuleWithError(module string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: panic recovered: %v", module, r)
	}
}

// HandlePanicInModuleThen recovers a panic in module and passes it to then
// as an error, typically to signal failure to whatever is waiting on the
// goroutine.
func HandlePanicInModuleThen(module string, then func(err error)) {
	if r := recover(); r != nil {
		then(fmt.Errorf("%s: panic recovered: %v", module, r))
	}
}

// HandlePanicThen recovers a panic and passes it to then as an error. Used
// for fire-and-forget goroutines where there is no module name worth
// logging.
func HandlePanicThen(then func(err error)) {
	if r := recover(); r != nil {
		then(fmt.Errorf("panic recovered: %v", r))
	}
}
