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


// Package corpus provides the reference-table model and its normalization.
//
// A Table is a minimal column-addressable string table, typically loaded
// from a CSV export of an ontology. Normalize cleans a reference table into
// the canonical shape the cascade requires: a non-empty, deduplicated
// official_label column and, for retrieval strategies, a clean_code column.
// Fallback columns (label, obo_id) are substituted when the canonical ones
// are absent; missing both is a configuration error.
package corpus
