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


// Package vecindex provides a BadgerDB-backed embedding index over
// ontology corpus entries.
//
// Entries are keyed by content-based IDs of their labels and serialized
// with MUS. Similarity search is a full cosine scan: corpus tables are
// small enough (thousands of labels) that an approximate-neighbor
// structure is not worth its complexity. Vectors are expected to be
// normalized, so cosine similarity reduces to a dot product.
//
// The in-memory mode backs retrieval matchers in tests and short-lived
// runs; the on-disk mode persists the index between runs so the corpus is
// only embedded once.
package vecindex
