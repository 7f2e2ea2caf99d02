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

// Package engine drives the term resolution cascade.
//
// Queries are resolved against the corpus in up to three stages of
// increasing cost: exact matching, a semantic strategy (lm or st), and an
// optional confidence-gated retrieval strategy (rag or rag_bie). Each query
// ends up in exactly one stage's rows of the final table; when a stage-2
// row is escalated to stage 3 its stage-2 row is superseded, never
// duplicated. A stage-2 backend that returns no scores curtails the
// cascade to two stages with a warning rather than failing the run.
package engine
