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


package corpus

import "errors"

var (
	// ErrNilTable is returned when a nil table is passed to Normalize.
	ErrNilTable = errors.New("reference table is nil")

	// ErrMissingLabelColumn is returned when a table has neither an
	// official_label nor a label column.
	ErrMissingLabelColumn = errors.New("reference table must contain an official_label or label column")

	// ErrMissingCodeColumn is returned when a code is required but the table
	// has neither a clean_code nor an obo_id column.
	ErrMissingCodeColumn = errors.New("reference table must contain a clean_code or obo_id column for retrieval strategies")

	// ErrColumnNotFound is returned when a requested column does not exist.
	ErrColumnNotFound = errors.New("column not found")

	// ErrEmptyCSV is returned when a CSV file has no header row.
	ErrEmptyCSV = errors.New("csv file has no header row")
)
