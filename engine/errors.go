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

package engine

import "errors"

var (
	// ErrEnvironmentRequired indicates the test/prod flag was not provided.
	ErrEnvironmentRequired = errors.New("environment flag is required")

	// ErrMatcherFactoryRequired indicates no matcher factory was provided.
	ErrMatcherFactoryRequired = errors.New("matcher factory is required")

	// ErrInvalidStage2Strategy indicates the stage-2 strategy is not lm or st.
	ErrInvalidStage2Strategy = errors.New("invalid stage-2 strategy")

	// ErrInvalidStage3Strategy indicates the stage-3 strategy is not rag or rag_bie.
	ErrInvalidStage3Strategy = errors.New("invalid stage-3 strategy")

	// ErrReferenceTableRequired indicates a stage-3 strategy was configured
	// without a reference table to retrieve from.
	ErrReferenceTableRequired = errors.New("stage-3 strategy requires a reference table")

	// ErrInvalidTopK indicates a non-positive top-K.
	ErrInvalidTopK = errors.New("top-K must be positive")

	// ErrInvalidThreshold indicates a stage-3 threshold outside [0, 1].
	ErrInvalidThreshold = errors.New("stage-3 threshold must be in [0, 1]")
)
