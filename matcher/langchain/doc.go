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


// Package langchain implements the four matching strategies on top of
// OpenAI-compatible model services via langchaingo.
//
//   - st: embedding cosine similarity between queries and corpus labels
//   - lm: language-model ranking of corpus labels with JSON-mode output
//   - rag: vector retrieval over an indexed reference table
//   - rag_bie: retrieval with bi-encoder re-scoring against query context
//
// NewFactory wires all four into a matcher.Registry. Use "none" as the
// token for local services (Ollama, LocalAI, vLLM) that skip authentication.
package langchain
