package goroutine

import (
	"runtime/debug"

	"github.com/x-xyz/dealexchange/base/log"
)

var (
	logger = log.Log()
)

type PanicEvent struct {
	Panic interface{}
	Stack []byte
}

type RecoverableOptions struct {
	afterRecovered *func(panic interface{}, stack []byte)
}

type RecoverableOptionsFunc = func(*RecoverableOptions) error

func getRecoverableOptions(fns ...RecoverableOptionsFunc) RecoverableOptions {
	opts := RecoverableOptions{}
	for _, fn := range fns {
		fn(&opts)
	}
	return opts
}

func WithAfterRecovered(f func(panic interface{}, stack []byte)) RecoverableOptionsFunc {
	return func(options *RecoverableOptions) error {
		options.afterRecovered = &f
		return nil
	}
}

// Recoverable runs f on the calling goroutine and turns a panic into a
// PanicEvent. It returns nil when f returns normally.
func Recoverable(f func(), fns ...RecoverableOptionsFunc) (ev *PanicEvent) {
	opts := getRecoverableOptions(fns...)

	defer func() {
		if p := recover(); p != nil {
			stack := debug.Stack()

			logger.WithFields(log.Fields{
				"err":   p,
				"stack": string(stack),
			}).Error("panic")

			if opts.afterRecovered != nil {
				(*opts.afterRecovered)(p, stack)
			}

			ev = &PanicEvent{p, stack}
		}
	}()

	f()
	return nil
}
