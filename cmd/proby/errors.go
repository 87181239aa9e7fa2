package main

import "errors"

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigFileRead     = errors.New("cannot read config file")
	errConfigInvalid      = errors.New("invalid config file")
	errBulkCountInvalid   = errors.New("bulk_count must be a positive integer")
	errDumpFileMissing    = errors.New("dump file does not exist")
	errDumpFileInvalid    = errors.New("invalid dump file")
)
