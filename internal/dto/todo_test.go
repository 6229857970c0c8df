package dto_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoflow-labs/todo-client/internal/dto"
)

func TestCreateTodoNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      dto.CreateTodo
		want    dto.CreateTodo
		wantErr string
	}{
		{
			name: "trims and defaults priority",
			in:   dto.CreateTodo{Title: "  Buy milk ", Description: " two litres "},
			want: dto.CreateTodo{Title: "Buy milk", Description: "two litres", Priority: dto.PriorityMedium},
		},
		{
			name: "keeps explicit priority",
			in:   dto.CreateTodo{Title: "Buy milk", Priority: dto.PriorityLow},
			want: dto.CreateTodo{Title: "Buy milk", Priority: dto.PriorityLow},
		},
		{
			name:    "whitespace title rejected",
			in:      dto.CreateTodo{Title: "   ", Priority: dto.PriorityHigh},
			wantErr: "title is required",
		},
		{
			name:    "unknown priority rejected",
			in:      dto.CreateTodo{Title: "x", Priority: "urgent"},
			wantErr: "invalid priority",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, dto.ErrInvalidIntent)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdateTodoNormalize(t *testing.T) {
	_, err := dto.UpdateTodo{Title: " ", Priority: dto.PriorityLow}.Normalize()
	require.ErrorIs(t, err, dto.ErrInvalidIntent)
	assert.Equal(t, "Title is required", dto.Message(err))

	got, err := dto.UpdateTodo{Title: " Walk dog", Priority: dto.PriorityHigh, Completed: true}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, dto.UpdateTodo{Title: "Walk dog", Priority: dto.PriorityHigh, Completed: true}, got)

	_, err = dto.UpdateTodo{Title: "Walk dog"}.Normalize()
	require.ErrorIs(t, err, dto.ErrInvalidIntent)
	assert.Equal(t, `Invalid priority "" (must be 'low', 'medium', or 'high')`, dto.Message(err))
}

func TestUpdateFromCarriesEveryField(t *testing.T) {
	todo := dto.Todo{ID: 4, Title: "a", Description: "b", Priority: dto.PriorityHigh, Completed: true}
	assert.Equal(t, dto.UpdateTodo{Title: "a", Description: "b", Priority: dto.PriorityHigh, Completed: true}, dto.UpdateFrom(todo))
}

func TestParsePriority(t *testing.T) {
	p, ok := dto.ParsePriority("HIGH")
	assert.True(t, ok)
	assert.Equal(t, dto.PriorityHigh, p)

	p, ok = dto.ParsePriority("")
	assert.True(t, ok)
	assert.Equal(t, dto.PriorityMedium, p)

	_, ok = dto.ParsePriority("later")
	assert.False(t, ok)
}

func TestTimestamps(t *testing.T) {
	todo := dto.Todo{CreatedAt: "2025-01-02T03:04:05.123456789Z", UpdatedAt: "not a time"}
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 123456789, time.UTC), todo.CreatedTime())
	assert.True(t, todo.UpdatedTime().IsZero())
}

func TestApplyPartitionsList(t *testing.T) {
	todos := []dto.Todo{
		{ID: 1, Completed: false},
		{ID: 2, Completed: true},
		{ID: 3, Completed: false},
		{ID: 4, Completed: true},
	}

	active := dto.Apply(todos, dto.FilterActive)
	completed := dto.Apply(todos, dto.FilterCompleted)
	all := dto.Apply(todos, dto.FilterAll)

	assert.Equal(t, todos, all)
	assert.Len(t, active, 2)
	assert.Len(t, completed, 2)

	seen := map[int]int{}
	for _, td := range append(active, completed...) {
		seen[td.ID]++
	}
	for _, td := range todos {
		assert.Equal(t, 1, seen[td.ID], "todo %d must be in exactly one partition", td.ID)
	}

	total, done, left := dto.Counts(todos)
	assert.Equal(t, 4, total)
	assert.Equal(t, 2, done)
	assert.Equal(t, 2, left)
}

func TestParseFilter(t *testing.T) {
	assert.Equal(t, dto.FilterActive, dto.ParseFilter("active"))
	assert.Equal(t, dto.FilterCompleted, dto.ParseFilter("completed"))
	assert.Equal(t, dto.FilterAll, dto.ParseFilter(""))
	assert.Equal(t, dto.FilterAll, dto.ParseFilter("bogus"))
}
