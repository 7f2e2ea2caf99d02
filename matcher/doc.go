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


// Package matcher defines the uniform contract between the cascade engine
// and interchangeable matching strategies.
//
// Four strategies are recognized by name: lm and st are eligible for
// stage 2, rag and rag_bie for stage 3. A Factory resolves a Request to a
// Matcher; resolution of an unrecognized strategy fails at invocation time,
// distinct from the engine's construction-time validation.
//
// # Implementation Packages
//
//   - matcher/langchain: production backends on langchaingo
//   - matcher/mock: test doubles for unit testing without model services
package matcher
