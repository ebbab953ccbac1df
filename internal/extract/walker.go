package extract

import (
	"log/slog"

	"github.com/nao1215/ccrscan/internal/model"
)

// walker accumulates observations over the tables of one document.
// It lives for a single extraction and is never shared.
type walker struct {
	logger       *slog.Logger
	seen         map[model.ObservationKey]bool
	observations []model.Observation
	stats        model.ExtractionStats
}

func newWalker(logger *slog.Logger) *walker {
	return &walker{
		logger:       logger,
		seen:         make(map[model.ObservationKey]bool),
		observations: make([]model.Observation, 0),
		stats:        model.NewExtractionStats(),
	}
}

// walk visits every table in document order.
func (w *walker) walk(tables [][][]string) {
	for i, rows := range tables {
		if len(rows) == 0 || len(rows[0]) == 0 {
			continue
		}

		class := ClassifyTable(rows[0])
		w.stats.CountTable(class.Kind)

		if !class.Kind.HasRows() {
			w.logger.Debug("skipping table",
				slog.Int("table", i),
				slog.String("kind", class.Kind.String()),
			)
			continue
		}
		w.walkTable(rows[class.StartRow:], interpreterFor(class.Kind), class.Section)
	}
}

// walkTable interprets the rows of one table. The section applies to every
// row of the table and to no other table.
func (w *walker) walkTable(rows [][]string, interpret rowInterpreter, section *model.Category) {
	for _, cells := range rows {
		if isBlankRow(cells) {
			continue
		}
		w.stats.RowsExamined++

		obs, ok := interpret(cells, section)
		if !ok {
			w.stats.RowsRejected++
			continue
		}
		w.add(obs)
	}
}

// add appends obs unless an observation with the same key was kept before.
func (w *walker) add(obs model.Observation) {
	key := obs.Key()
	if w.seen[key] {
		w.stats.DuplicatesDropped = append(w.stats.DuplicatesDropped, key)
		w.logger.Debug("dropping duplicate observation", slog.String("key", key.String()))
		return
	}
	w.seen[key] = true
	w.observations = append(w.observations, obs)
}

// isBlankRow reports whether a row has no cells or only empty ones.
func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
