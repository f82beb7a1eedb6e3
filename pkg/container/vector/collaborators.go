// Copyright 2021 Matrix Origin
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

package vector

//go:generate mockgen -source=collaborators.go -destination=mock_collaborators.go -package=vector

import (
	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/matrixorigin/gdfcore/pkg/common/mpool"
	"github.com/matrixorigin/gdfcore/pkg/container/buffer"
	"github.com/matrixorigin/gdfcore/pkg/container/types"
)

// TypeConverter resolves a logical type to the physical layout of its buffer.
type TypeConverter interface {
	PhysicalType(logical types.T) (types.Type, error)
}

// Broadcaster builds a buffer holding value length times.
type Broadcaster interface {
	Broadcast(value any, typ types.T, length int, mp *mpool.MPool) (*buffer.Buffer, error)
}

type defaultTypeConverter struct{}

func (defaultTypeConverter) PhysicalType(logical types.T) (types.Type, error) {
	if !logical.IsFixedLen() {
		return types.Type{}, moerr.NewNotSupportedNoCtx("column of type %s", logical)
	}
	return types.New(logical), nil
}

type defaultBroadcaster struct{}

// Broadcast requires value to have typ's exact Go type.
func (defaultBroadcaster) Broadcast(value any, typ types.T, length int, mp *mpool.MPool) (*buffer.Buffer, error) {
	var (
		b   *buffer.Buffer
		err error
	)
	switch x := value.(type) {
	case bool:
		b, err = buffer.Broadcast(x, length, mp)
	case int8:
		b, err = buffer.Broadcast(x, length, mp)
	case int16:
		b, err = buffer.Broadcast(x, length, mp)
	case int32:
		b, err = buffer.Broadcast(x, length, mp)
	case int64:
		b, err = buffer.Broadcast(x, length, mp)
	case uint8:
		b, err = buffer.Broadcast(x, length, mp)
	case uint16:
		b, err = buffer.Broadcast(x, length, mp)
	case uint32:
		b, err = buffer.Broadcast(x, length, mp)
	case uint64:
		b, err = buffer.Broadcast(x, length, mp)
	case float32:
		b, err = buffer.Broadcast(x, length, mp)
	case float64:
		b, err = buffer.Broadcast(x, length, mp)
	default:
		return nil, moerr.NewTypeMismatchNoCtx("cannot broadcast %T", value)
	}
	if err != nil {
		return nil, err
	}
	if b.Type() != typ {
		b.Free()
		return nil, moerr.NewTypeMismatchNoCtx("cannot broadcast %T as %s", value, typ)
	}
	return b, nil
}

var (
	DefaultTypeConverter TypeConverter = defaultTypeConverter{}
	DefaultBroadcaster   Broadcaster   = defaultBroadcaster{}
)

// Option configures the collaborators of a new Vector.
type Option func(*Vector)

func WithTypeConverter(c TypeConverter) Option {
	return func(v *Vector) {
		v.conv = c
	}
}

func WithBroadcaster(b Broadcaster) Option {
	return func(v *Vector) {
		v.bcast = b
	}
}
