package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestParseDBError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "duplicate entry", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'uuid'"}, expected: ErrDuplicateKey},
		{name: "data too long", err: &mysql.MySQLError{Number: 1406, Message: "Data too long for column 'file_name'"}, expected: ErrDataTooLong},
		{name: "missing table", err: &mysql.MySQLError{Number: 1146, Message: "Table 'lnkgen.route_scripts' doesn't exist"}, expected: ErrSchemaMissing},
		{name: "wrapped driver error", err: fmt.Errorf("exec: %w", &mysql.MySQLError{Number: 1062}), expected: ErrDuplicateKey},
		{name: "string fallback", err: errors.New("Error: Duplicate entry 'a'"), expected: ErrDuplicateKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ParseDBError(tt.err), tt.expected)
		})
	}
}

func TestParseDBErrorPassThrough(t *testing.T) {
	assert.NoError(t, ParseDBError(nil))

	other := errors.New("connection reset")
	assert.Same(t, other, ParseDBError(other))
}

func TestBuildScriptConditions(t *testing.T) {
	where, args := buildScriptConditions(ScriptFilter{})
	assert.Equal(t, "1 = 1", where)
	assert.Empty(t, args)

	where, args = buildScriptConditions(ScriptFilter{Route: 3, BatchID: "b-1"})
	assert.Equal(t, "1 = 1 AND route = ? AND batch_id = ?", where)
	assert.Equal(t, []any{3, "b-1"}, args)
}
