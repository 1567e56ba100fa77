// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind is the stable discriminant of a revert.
type Kind string

const (
	InvalidPackageIndex  Kind = "InvalidPackageIndex"
	InvalidDepositAmount Kind = "InvalidDepositAmount"
	NonExistentStake     Kind = "NonExistentStake"
	NeverStaked          Kind = "NeverStaked"
	AlreadyTerminated    Kind = "AlreadyTerminated"
	LockTimeNotElapsed   Kind = "LockTimeNotElapsed"
	Unauthorized         Kind = "Unauthorized"
	TransferFailed       Kind = "TransferFailed"
	AlreadyInitialized   Kind = "AlreadyInitialized"
	NotInitialized       Kind = "NotInitialized"
	RewardOverflow       Kind = "RewardOverflow"
	LedgerFull           Kind = "LedgerFull"
)

// Kinds lists every revert kind.
var Kinds = []Kind{
	InvalidPackageIndex,
	InvalidDepositAmount,
	NonExistentStake,
	NeverStaked,
	AlreadyTerminated,
	LockTimeNotElapsed,
	Unauthorized,
	TransferFailed,
	AlreadyInitialized,
	NotInitialized,
	RewardOverflow,
	LedgerFull,
}

// ErrRevert is a domain failure. The operation that returned it left no state change.
type ErrRevert struct {
	kind    Kind
	message string
	cause   error
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{kind: kind, message: message}
}

func Newf(kind Kind, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap builds a revert caused by err.
func Wrap(kind Kind, err error, message string) *ErrRevert {
	return &ErrRevert{kind: kind, message: message, cause: err}
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func (e *ErrRevert) Message() string {
	return e.message
}

func (e *ErrRevert) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *ErrRevert) Unwrap() error {
	return e.cause
}

// Is matches reverts of the same kind, so New(kind, "") works as a sentinel with errors.Is.
func (e *ErrRevert) Is(target error) bool {
	var t *ErrRevert
	if !errors.As(target, &t) {
		return false
	}
	return t.kind == e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of the revert in err's chain, if any.
func KindOf(err error) (Kind, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind, true
	}
	return "", false
}
