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

package types

// Castable reports whether astype defines a conversion from -> to.
// Every numeric pair converts, bool widens to any numeric, nothing narrows to bool.
func Castable(from, to T) bool {
	switch {
	case from == to:
		return from.IsFixedLen()
	case from.IsNumeric() && to.IsNumeric():
		return true
	case from == T_bool && to.IsNumeric():
		return true
	}
	return false
}

// Promote returns the result oid of an arithmetic operator over l and r.
func Promote(l, r T) (T, bool) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return T_any, false
	}
	if l == r {
		return l, true
	}
	switch {
	case l.IsFloat() || r.IsFloat():
		if l == T_float32 && r == T_float32 {
			return T_float32, true
		}
		return T_float64, true
	case l.IsSignedInt() && r.IsSignedInt(), l.IsUnsignedInt() && r.IsUnsignedInt():
		if l.TypeLen() >= r.TypeLen() {
			return l, true
		}
		return r, true
	}
	// mixed signedness
	return T_int64, true
}
