package extractor

import (
	"go.uber.org/zap"
)

// Engine binds a loaded FieldTable to a logger. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	table  *FieldTable
	logger *zap.Logger
}

func NewEngine(table *FieldTable, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{table: table, logger: logger}
}

func (e *Engine) Table() *FieldTable {
	return e.table
}

// BuildRecord normalizes text and runs the whole table over it.
func (e *Engine) BuildRecord(text string) DocumentRecord {
	return assemble(e.table.specs, Normalize(text), e.logReject)
}

// BuildRecordFor is BuildRecord restricted to one document profile.
func (e *Engine) BuildRecordFor(profile, text string) (DocumentRecord, error) {
	specs, err := e.table.Profile(profile)
	if err != nil {
		return DocumentRecord{}, err
	}
	return assemble(specs, Normalize(text), e.logReject), nil
}

func (e *Engine) logReject(spec FieldSpec, rule Rule, raw string, err error) {
	if ce := e.logger.Check(zap.DebugLevel, "extraction candidate rejected"); ce != nil {
		ce.Write(
			zap.String("field", string(spec.ID)),
			zap.String("rule", rule.Name),
			zap.String("candidate", raw),
			zap.Error(err),
		)
	}
}
