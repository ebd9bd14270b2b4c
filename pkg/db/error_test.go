package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(errors.New(`ERROR: duplicate key value violates unique constraint "uq_demanda_fecha_hora_gerencia" (SQLSTATE 23505)`)))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: Demanda.FechaOperacion")))

	assert.False(t, IsDuplicateKeyErr(nil))
	assert.False(t, IsDuplicateKeyErr(gorm.ErrRecordNotFound))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
}
