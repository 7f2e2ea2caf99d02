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

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/ontomap/core"
	"github.com/poiesic/ontomap/matcher"
)

// Run executes the cascade to completion and returns the unified result
// table. Stages run strictly in sequence; each stage's routing decision
// depends on the previous stage's output.
func (e *Engine) Run(ctx context.Context) ([]core.ResultRow, error) {
	logger := e.logger.With("run_id", uuid.NewString())
	logger.Info("cascade run starting", "queries", len(e.queries))

	stage1, remaining := e.exactMatch()
	logger.Info("exact match stage complete",
		"matched", len(stage1), "remaining", len(remaining))
	if len(remaining) == 0 {
		return e.assemble(logger, stage1), nil
	}

	stage2, result2, err := e.runMatcherStage(ctx, logger, e.s2Strategy, core.StageSemantic, remaining)
	if err != nil {
		return nil, fmt.Errorf("stage 2 (%s): %w", e.s2Strategy, err)
	}

	if e.s3Strategy == "" {
		return e.assemble(logger, stage1, stage2), nil
	}
	if !result2.HasScores() {
		logger.Warn("stage-2 output carries no scores, skipping retrieval stage",
			"strategy", e.s2Strategy)
		return e.assemble(logger, stage1, stage2), nil
	}

	escalated := escalatedQueries(stage2, e.threshold)
	logger.Info("confidence gate evaluated",
		"threshold", e.threshold, "escalated", len(escalated))
	if len(escalated) == 0 {
		return e.assemble(logger, stage1, stage2), nil
	}

	stage3, _, err := e.runMatcherStage(ctx, logger, e.s3Strategy, core.StageRetrieval, escalated)
	if err != nil {
		return nil, fmt.Errorf("stage 3 (%s): %w", e.s3Strategy, err)
	}

	kept := dropEscalated(stage2, escalated)
	return e.assemble(logger, stage1, kept, stage3), nil
}

// runMatcherStage resolves abbreviations over the queries, invokes the
// strategy's backend over the expanded forms, and joins the backend rows
// back onto the original queries.
func (e *Engine) runMatcherStage(ctx context.Context, logger *slog.Logger,
	strategy matcher.Strategy, stage int, queries []string) ([]core.ResultRow, *matcher.Result, error) {

	expanded := e.expander.Expand(queries)
	updated := make([]string, len(queries))
	for i, q := range queries {
		updated[i] = expanded[q]
	}
	updatedCura := rekeyCuration(e.curaMap, expanded)

	m, err := e.factory.New(e.request(strategy, updated))
	if err != nil {
		return nil, nil, err
	}
	result, err := m.GetMatchResults(ctx, updatedCura, e.topK, e.env)
	if err != nil {
		return nil, nil, err
	}

	rows := e.joinRows(logger, queries, expanded, result, stage)
	logger.Info("matcher stage complete",
		"stage", stage, "strategy", strategy, "rows", len(rows))
	return rows, result, nil
}

// rekeyCuration re-keys the curation map through the abbreviation mapping.
// Only curation keys present in the mapping survive, so the backend sees
// curation entries under the query strings it was actually given.
func rekeyCuration(curaMap, expanded map[string]string) map[string]string {
	out := make(map[string]string, len(curaMap))
	for k, v := range curaMap {
		if newKey, ok := expanded[k]; ok {
			out[newKey] = v
		}
	}
	return out
}

// joinRows left-joins backend rows onto the original queries via the
// expansion mapping. A query the backend silently dropped still yields a
// row, with empty candidates; duplicate backend rows for one expanded
// string are surfaced and the first occurrence wins.
func (e *Engine) joinRows(logger *slog.Logger, originals []string,
	expanded map[string]string, result *matcher.Result, stage int) []core.ResultRow {

	byQuery := make(map[string]matcher.Row, len(result.Rows))
	for _, row := range result.Rows {
		if _, dup := byQuery[row.Query]; dup {
			logger.Warn("backend returned duplicate rows for query, keeping first",
				"query", row.Query, "stage", stage)
			continue
		}
		byQuery[row.Query] = row
	}

	rows := make([]core.ResultRow, len(originals))
	for i, original := range originals {
		updatedValue := expanded[original]
		backendRow, ok := byQuery[updatedValue]
		if !ok {
			logger.Warn("backend dropped query, emitting row without candidates",
				"query", original, "updated", updatedValue, "stage", stage)
		}

		curated, ok := e.curaMap[original]
		if !ok {
			curated = core.CuratedNotFound
		}
		rows[i] = core.ResultRow{
			OriginalValue:   original,
			UpdatedValue:    updatedValue,
			CuratedOntology: curated,
			Stage:           stage,
			Candidates:      backendRow.Candidates,
		}
	}
	return rows
}

// escalatedQueries returns the original values of rows whose top-1
// confidence falls below the threshold. Missing and non-numeric scores
// parse to 0 and therefore always escalate.
func escalatedQueries(rows []core.ResultRow, threshold float64) []string {
	var escalated []string
	for i := range rows {
		if rows[i].TopScore() < threshold {
			escalated = append(escalated, rows[i].OriginalValue)
		}
	}
	return escalated
}

// dropEscalated removes rows superseded by escalation.
func dropEscalated(rows []core.ResultRow, escalated []string) []core.ResultRow {
	gone := make(map[string]bool, len(escalated))
	for _, q := range escalated {
		gone[q] = true
	}
	kept := make([]core.ResultRow, 0, len(rows))
	for _, row := range rows {
		if gone[row.OriginalValue] {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

// assemble concatenates stage tables in stage order. A value resolved by
// more than one stage is a data-quality condition to surface, not repair.
func (e *Engine) assemble(logger *slog.Logger, stages ...[]core.ResultRow) []core.ResultRow {
	var out []core.ResultRow
	stageOf := make(map[string]int)
	perStage := make(map[int]int)
	for _, rows := range stages {
		for _, row := range rows {
			if prev, ok := stageOf[row.OriginalValue]; ok && prev != row.Stage {
				logger.Warn("query resolved by multiple stages",
					"query", row.OriginalValue, "stages", []int{prev, row.Stage})
			}
			stageOf[row.OriginalValue] = row.Stage
			perStage[row.Stage]++
			out = append(out, row)
		}
	}
	logger.Info("cascade run complete",
		"rows", len(out),
		"stage1", perStage[core.StageExact],
		"stage2", perStage[core.StageSemantic],
		"stage3", perStage[core.StageRetrieval])
	return out
}
