package sqlsearch

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignValueConversions(t *testing.T) {
	type target struct {
		I   int
		I64 int64
		U   uint32
		F   float64
		B   bool
		S   string
		By  []byte
		T   time.Time
		PS  *string
		PI  *int64
	}
	v := reflect.ValueOf(&target{}).Elem()
	now := time.Now()

	require.NoError(t, assignValue(v.FieldByName("I"), int64(42)))
	require.NoError(t, assignValue(v.FieldByName("I64"), int64(42)))
	require.NoError(t, assignValue(v.FieldByName("U"), int64(7)))
	require.NoError(t, assignValue(v.FieldByName("F"), 3.5))
	require.NoError(t, assignValue(v.FieldByName("B"), int64(1)))
	require.NoError(t, assignValue(v.FieldByName("S"), []byte("hello")))
	require.NoError(t, assignValue(v.FieldByName("By"), []byte{1, 2}))
	require.NoError(t, assignValue(v.FieldByName("T"), now))
	require.NoError(t, assignValue(v.FieldByName("PS"), "ptr"))
	require.NoError(t, assignValue(v.FieldByName("PI"), int64(9)))

	got := v.Interface().(target)
	assert.Equal(t, 42, got.I)
	assert.Equal(t, int64(42), got.I64)
	assert.Equal(t, uint32(7), got.U)
	assert.Equal(t, 3.5, got.F)
	assert.True(t, got.B)
	assert.Equal(t, "hello", got.S)
	assert.Equal(t, []byte{1, 2}, got.By)
	assert.True(t, got.T.Equal(now))
	require.NotNil(t, got.PS)
	assert.Equal(t, "ptr", *got.PS)
	require.NotNil(t, got.PI)
	assert.Equal(t, int64(9), *got.PI)
}

func TestAssignValueMismatch(t *testing.T) {
	var b bool
	err := assignValue(reflect.ValueOf(&b).Elem(), "not a bool")
	assert.Error(t, err)
}

func TestFieldScannerNullLeavesZero(t *testing.T) {
	s := "preset"
	v := reflect.ValueOf(&s).Elem()
	valid := true
	fs := &fieldScanner{dest: v, valid: &valid}

	// NULL resets the destination and does not mark validity
	valid = false
	require.NoError(t, fs.Scan(nil))
	assert.Equal(t, "", s)
	assert.False(t, valid)

	require.NoError(t, fs.Scan("set"))
	assert.Equal(t, "set", s)
	assert.True(t, valid)
}

func TestPageInMemory(t *testing.T) {
	rows := []any{1, 2, 3, 4, 5}

	assert.Equal(t, []any{1, 2, 3, 4, 5}, pageInMemory(rows, 0, 0))
	assert.Equal(t, []any{3, 4, 5}, pageInMemory(rows, 2, 0))
	assert.Equal(t, []any{1, 2}, pageInMemory(rows, 0, 2))
	assert.Equal(t, []any{3, 4}, pageInMemory(rows, 2, 2))
	assert.Nil(t, pageInMemory(rows, 10, 2))
}
