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

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMoErrCode(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		err      error
		code     uint16
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			code:     Ok,
			expected: true,
		},
		{
			name:     "nil error with code",
			err:      nil,
			code:     ErrOutOfRange,
			expected: false,
		},
		{
			name:     "ErrOutOfRange",
			err:      NewOutOfRange(ctx, "int32", "index %d", 7),
			code:     ErrOutOfRange,
			expected: true,
		},
		{
			name:     "wrapped ErrTypeMismatch",
			err:      fmt.Errorf("join: %w", NewTypeMismatchNoCtx("int32 vs int64")),
			code:     ErrTypeMismatch,
			expected: true,
		},
		{
			name:     "different code",
			err:      NewUnorderedComparison(ctx),
			code:     ErrTypeMismatch,
			expected: false,
		},
		{
			name:     "standard error",
			err:      errors.New("some error"),
			code:     ErrInternal,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsMoErrCode(tt.err, tt.code))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewUnsupportedOperationNoCtx("categorical", "add")
	require.Equal(t, "categorical cannot perform the operation: add", err.Error())
	require.Equal(t, ErrUnsupportedOperation, err.ErrorCode())
	require.False(t, err.Succeeded())

	err = NewUnsupportedCastNoCtx("BOOL", "FLOAT64")
	require.Equal(t, "unsupported cast from BOOL to FLOAT64", err.Display())
}

func TestErrorsIs(t *testing.T) {
	a := NewTypeMismatchNoCtx("a")
	b := NewTypeMismatchNoCtx("b")
	require.True(t, errors.Is(fmt.Errorf("wrap: %w", a), b))
	require.False(t, errors.Is(a, NewUnorderedComparisonNoCtx()))
}

func TestConvertGoError(t *testing.T) {
	ctx := context.Background()
	require.Nil(t, ConvertGoError(ctx, nil))

	me := NewInvalidStateNoCtx("freed")
	require.Equal(t, error(me), ConvertGoError(ctx, me))

	require.True(t, IsMoErrCode(ConvertGoError(ctx, io.EOF), ErrInvalidInput))
	require.True(t, IsMoErrCode(ConvertGoError(ctx, errors.New("boom")), ErrInternal))
}

func TestConvertPanicError(t *testing.T) {
	ctx := context.Background()
	me := NewOOM(ctx)
	require.Equal(t, me, ConvertPanicError(ctx, me))
	require.True(t, IsMoErrCode(ConvertPanicError(ctx, "oops"), ErrInternal))
}
