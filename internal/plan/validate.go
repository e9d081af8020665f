package plan

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Validate runs every step through the PostgreSQL parser and returns the number
// of statements in the script
func (p *Plan) Validate() (int, error) {
	total := 0
	for _, step := range p.Steps {
		stmts, err := Split(step.SQL)
		if err != nil {
			return 0, fmt.Errorf("step %d (%s %s): %w", step.Position, step.Operation, step.Target, err)
		}
		total += len(stmts)
	}
	return total, nil
}

// Split breaks SQL into individual statements using the PostgreSQL parser
func Split(sql string) ([]string, error) {
	stmts, err := pg_query.SplitWithParser(sql, true)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SQL: %w", err)
	}
	return stmts, nil
}
