// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ConnectionError GenericError
type DecodeError GenericError
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RecordError GenericError
type TransportError GenericError

// common errors - keep in alphabetic order
var (
	AlreadyInitialised           = ExistsError("already initialised")
	CertificateFileAlreadyExists = ExistsError("certificate file already exists")
	ConnectionClosed             = ConnectionError("connection closed")
	ConnectionLost               = ConnectionError("connection lost")
	CountDecodeFailed            = DecodeError("count value is malformed")
	CountTooLarge                = DecodeError("count exceeds maximum")
	CreateCommandFailed          = ProcessError("create command failed")
	CreateNotConfigured          = NotFoundError("create command is not configured")
	DatabaseIsNotSet             = ProcessError("database is not set")
	DNADecodeFailed              = DecodeError("dna value is malformed")
	InvalidAccount               = InvalidError("invalid account")
	InvalidAccountChecksum       = InvalidError("invalid account checksum")
	InvalidAccountLength         = LengthError("invalid account length")
	InvalidBatchSize             = InvalidError("invalid batch size")
	InvalidChain                 = InvalidError("invalid chain")
	InvalidConfiguration         = InvalidError("invalid configuration")
	InvalidCount                 = InvalidError("invalid count")
	InvalidFileName              = InvalidError("invalid file name")
	InvalidHex                   = DecodeError("invalid hex")
	InvalidIpAddress             = InvalidError("invalid IP address")
	InvalidLoggerChannel         = InvalidError("invalid logger channel")
	InvalidNodeURL               = InvalidError("invalid node URL")
	InvalidPortNumber            = InvalidError("invalid port number")
	InvalidPrivateKeyFile        = InvalidError("invalid private key file")
	InvalidPublicKeyFile         = InvalidError("invalid public key file")
	InvalidStorageKey            = LengthError("invalid storage key")
	InvalidStructPointer         = InvalidError("invalid struct pointer")
	KeyFileAlreadyExists         = ExistsError("key file already exists")
	MissingParameters            = InvalidError("missing parameters")
	NotADirectory                = InvalidError("not a directory")
	NotInitialised               = NotFoundError("not initialised")
	OwnerDecodeFailed            = DecodeError("owner value is malformed")
	RateLimited                  = ProcessError("rate limited")
	RecordTruncated              = RecordError("record is truncated")
	RequestFailed                = TransportError("request failed")
	RequestTimedOut              = TransportError("request timed out")
	ResponseMismatch             = TransportError("response does not match request")
	SubscriptionFailed           = ConnectionError("subscription failed")
	TransactionInUse             = ProcessError("transaction already in use")
	WatcherStopped               = ConnectionError("count watcher stopped")
)

// the error interface methods
func (e GenericError) Error() string    { return string(e) }
func (e ConnectionError) Error() string { return string(e) }
func (e DecodeError) Error() string     { return string(e) }
func (e ExistsError) Error() string     { return string(e) }
func (e InvalidError) Error() string    { return string(e) }
func (e LengthError) Error() string     { return string(e) }
func (e NotFoundError) Error() string   { return string(e) }
func (e ProcessError) Error() string    { return string(e) }
func (e RecordError) Error() string     { return string(e) }
func (e TransportError) Error() string  { return string(e) }

// Wrapped - a classified error with added detail
//
// the class predicates look through to the base error so
// IsErrTransport(Wrap(RequestFailed, "...")) is still true
type Wrapped struct {
	base   error
	detail string
}

// Wrap - attach a detail message to one of the error instances
func Wrap(base error, detail string) error {
	return &Wrapped{
		base:   base,
		detail: detail,
	}
}

func (w *Wrapped) Error() string { return w.base.Error() + ": " + w.detail }

// Unwrap - return the classified base error
func (w *Wrapped) Unwrap() error { return w.base }

func base(e error) error {
	for {
		w, ok := e.(*Wrapped)
		if !ok {
			return e
		}
		e = w.base
	}
}

// determine the class of an error
func IsErrConnection(e error) bool { _, ok := base(e).(ConnectionError); return ok }
func IsErrDecode(e error) bool     { _, ok := base(e).(DecodeError); return ok }
func IsErrExists(e error) bool     { _, ok := base(e).(ExistsError); return ok }
func IsErrInvalid(e error) bool    { _, ok := base(e).(InvalidError); return ok }
func IsErrLength(e error) bool     { _, ok := base(e).(LengthError); return ok }
func IsErrNotFound(e error) bool   { _, ok := base(e).(NotFoundError); return ok }
func IsErrProcess(e error) bool    { _, ok := base(e).(ProcessError); return ok }
func IsErrRecord(e error) bool     { _, ok := base(e).(RecordError); return ok }
func IsErrTransport(e error) bool  { _, ok := base(e).(TransportError); return ok }
