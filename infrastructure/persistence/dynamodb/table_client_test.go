package dynamodb

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildKeyConditionPartitionOnly(t *testing.T) {
	expr, err := buildKeyCondition("SCHOOL#school-1", QueryOptions{})
	require.NoError(t, err)

	require.NotNil(t, expr.KeyCondition())
	assert.Contains(t, expr.Names(), "#0")
	assert.Equal(t, "PK", expr.Names()["#0"])
	assert.Len(t, expr.Values(), 1)
}

func TestBuildKeyConditionSortBranches(t *testing.T) {
	cases := []struct {
		name     string
		opts     QueryOptions
		fragment string
		values   int
	}{
		{
			name:     "begins with by default",
			opts:     QueryOptions{SortValue: "STUDENT#"},
			fragment: "begins_with",
			values:   2,
		},
		{
			name:     "equal",
			opts:     QueryOptions{Condition: SortEqual, SortValue: "STUDENT#a"},
			fragment: "= :1",
			values:   2,
		},
		{
			name:     "greater",
			opts:     QueryOptions{Condition: SortGreater, SortValue: "STUDENT#a"},
			fragment: "> :1",
			values:   2,
		},
		{
			name:     "greater or equal",
			opts:     QueryOptions{Condition: SortGreaterEqual, SortValue: "STUDENT#a"},
			fragment: ">= :1",
			values:   2,
		},
		{
			name:     "between",
			opts:     QueryOptions{Condition: SortBetween, SortValue: "STUDENT#a", SortUpper: "STUDENT#m"},
			fragment: "BETWEEN",
			values:   3,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expr, err := buildKeyCondition("SCHOOL#school-1", tc.opts)
			require.NoError(t, err)

			require.NotNil(t, expr.KeyCondition())
			assert.Contains(t, *expr.KeyCondition(), tc.fragment)
			assert.Len(t, expr.Values(), tc.values)

			names := make([]string, 0, len(expr.Names()))
			for _, name := range expr.Names() {
				names = append(names, name)
			}
			assert.ElementsMatch(t, []string{"PK", "SK"}, names)
		})
	}
}

// An empty sort value means the partition condition stands alone, even
// when a sort condition is set.
func TestBuildKeyConditionIgnoresEmptySortValue(t *testing.T) {
	expr, err := buildKeyCondition("SCHOOL#school-1", QueryOptions{Condition: SortGreater})
	require.NoError(t, err)
	assert.Len(t, expr.Values(), 1)
}

func TestMarshalKey(t *testing.T) {
	av := marshalKey(Key{PK: "SCHOOL#school-1", SK: "STUDENT#a"})

	pk, ok := av["PK"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "SCHOOL#school-1", pk.Value)

	sk, ok := av["SK"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "STUDENT#a", sk.Value)
}

func TestBatchGetEmptyKeys(t *testing.T) {
	c := &TableClient{tableName: "registry"}

	items, err := c.BatchGet(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestBatchGetRejectsOversizedBatch(t *testing.T) {
	c := &TableClient{tableName: "registry"}

	keys := make([]Key, batchGetLimit+1)
	for i := range keys {
		keys[i] = Key{PK: "SCHOOL#school-1", SK: fmt.Sprintf("STUDENT#%d", i)}
	}

	_, err := c.BatchGet(context.Background(), keys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 100 keys")
}

func TestMirroredStudentsEmptyIDs(t *testing.T) {
	mirror := NewMirror(&TableClient{tableName: "registry"}, zap.NewNop())

	records, err := mirror.MirroredStudents(context.Background(), "school-1", nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStudentKey(t *testing.T) {
	key := StudentKey("school-1", "abc")
	assert.Equal(t, "SCHOOL#school-1", key.PK)
	assert.Equal(t, "STUDENT#abc", key.SK)
}

func TestPersonKey(t *testing.T) {
	key := PersonKey("abc")
	assert.Equal(t, "PERSON", key.PK)
	assert.Equal(t, "PERSON#abc", key.SK)
}
