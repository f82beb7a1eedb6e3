// Copyright 2021 - 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package moerr

import "context"

// Context is the context used by the NoCtx constructors.
func Context() context.Context {
	return context.Background()
}

func NewInternalErrorNoCtx(msg string, args ...any) *Error {
	return NewInternalError(Context(), msg, args...)
}

func NewNotSupportedNoCtx(msg string, args ...any) *Error {
	return NewNotSupported(Context(), msg, args...)
}

func NewOutOfRangeNoCtx(typ string, msg string, args ...any) *Error {
	return NewOutOfRange(Context(), typ, msg, args...)
}

func NewInvalidInputNoCtx(msg string, args ...any) *Error {
	return NewInvalidInput(Context(), msg, args...)
}

func NewInvalidStateNoCtx(msg string, args ...any) *Error {
	return NewInvalidState(Context(), msg, args...)
}

func NewTypeMismatchNoCtx(msg string, args ...any) *Error {
	return NewTypeMismatch(Context(), msg, args...)
}

func NewUnsupportedCastNoCtx(from, to string) *Error {
	return NewUnsupportedCast(Context(), from, to)
}

func NewUnsupportedOperationNoCtx(kind string, op string) *Error {
	return NewUnsupportedOperation(Context(), kind, op)
}

func NewUnorderedComparisonNoCtx() *Error {
	return NewUnorderedComparison(Context())
}

func NewSizeNotMatchNoCtx(msg string, args ...any) *Error {
	return NewSizeNotMatch(Context(), msg, args...)
}
