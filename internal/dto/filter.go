package dto

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter maps anything unknown to FilterAll.
func ParseFilter(s string) Filter {
	switch f := Filter(s); f {
	case FilterActive, FilterCompleted:
		return f
	default:
		return FilterAll
	}
}

// Apply returns the todos matching f, in list order. The input is not modified.
func Apply(todos []Todo, f Filter) []Todo {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		switch f {
		case FilterActive:
			if t.Completed {
				continue
			}
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// Counts returns the total, completed and still-active numbers for todos.
func Counts(todos []Todo) (total, completed, active int) {
	for _, t := range todos {
		if t.Completed {
			completed++
		}
	}
	total = len(todos)
	return total, completed, total - completed
}
