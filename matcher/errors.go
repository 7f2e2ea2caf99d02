// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package matcher

import "errors"

var (
	// ErrUnknownStrategy is returned when a factory is asked for a strategy
	// it has no builder for.
	ErrUnknownStrategy = errors.New("unknown matching strategy")

	// ErrNilBuilder is returned when a nil builder is registered.
	ErrNilBuilder = errors.New("builder cannot be nil")
)
