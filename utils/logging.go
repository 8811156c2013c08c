package utils

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	logger "github.com/sirupsen/logrus"
)

// LogFatal logs a fatal error with caller info that skips callerSkip many levels with arbitrarily many additional infos.
// callerSkip equal to 0 gives you info directly where LogFatal is called.
func LogFatal(err error, errorMsg interface{}, callerSkip int, additionalInfos ...map[string]interface{}) {
	errorEntry(logger.StandardLogger(), err, callerSkip, additionalInfos...).Fatal(errorMsg)
}

// LogError logs an error with caller info that skips callerSkip many levels with arbitrarily many additional infos.
// callerSkip equal to 0 gives you info directly where LogError is called.
func LogError(err error, errorMsg interface{}, callerSkip int, additionalInfos ...map[string]interface{}) {
	errorEntry(logger.StandardLogger(), err, callerSkip, additionalInfos...).Error(errorMsg)
}

// LogLookupFailure logs a failed node lookup step on the given logger.
// The entry always carries the node address, the endpoint is left out when empty.
func LogLookupFailure(log logger.FieldLogger, level logger.Level, err error, msg string, address string, endpoint string) {
	infos := map[string]interface{}{
		"address": address,
	}
	if endpoint != "" {
		infos["endpoint"] = endpoint
	}
	errorEntry(log, err, 0, infos).Log(level, msg)
}

func errorEntry(log logger.FieldLogger, err error, callerSkip int, additionalInfos ...map[string]interface{}) *logger.Entry {
	fields := logger.Fields{}

	pc, fullFilePath, line, ok := runtime.Caller(callerSkip + 2)
	if ok {
		fields["_file"] = filepath.Base(fullFilePath)
		fields["_function"] = runtime.FuncForPC(pc).Name()
		fields["_line"] = line
	} else {
		fields["runtime"] = "callstack cannot be read"
	}

	if err != nil {
		// innermost error of the wrap chain, e.g. the transport error behind an endpoint error
		cause := err
		for next := errors.Unwrap(cause); next != nil; next = errors.Unwrap(cause) {
			cause = next
		}
		if cause != err {
			fields["cause"] = cause.Error()
		}
		fields["errType"] = fmt.Sprintf("%T", cause)
	}

	for _, infoMap := range additionalInfos {
		for name, info := range infoMap {
			fields[name] = info
		}
	}

	entry := log.WithFields(fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	return entry
}
