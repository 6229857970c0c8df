package handler

import (
	"html/template"
	"time"

	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/store"
)

type pageData struct {
	View       store.View
	Loading    bool
	Error      string
	FlashError string
	Success    string
	Filters    []dto.Filter
	Priorities []dto.Priority
}

var funcs = template.FuncMap{
	"date": func(t dto.Todo) string {
		ts := t.CreatedTime()
		if ts.IsZero() {
			return t.CreatedAt
		}
		return ts.Local().Format(time.DateOnly)
	},
	"filterCount": func(v store.View, f dto.Filter) int {
		switch f {
		case dto.FilterActive:
			return v.Active
		case dto.FilterCompleted:
			return v.Completed
		default:
			return v.Total
		}
	},
}

var page = template.Must(template.New("index").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Todo Manager</title></head>
<body>
<h1>Todo Manager</h1>
{{if .View.Total}}<p>{{.View.Completed}} of {{.View.Total}} tasks completed</p>{{end}}
{{if .Loading}}<p>Loading todos...</p>{{end}}
{{if .Success}}<p class="success">{{.Success}}</p>{{end}}
{{if .FlashError}}<p class="error">{{.FlashError}}</p>{{end}}
{{if .Error}}
<div class="error">
  <p>{{.Error}}</p>
  <form method="post" action="/error/dismiss?filter={{.View.Filter}}"><button>Dismiss</button></form>
</div>
{{end}}

<form method="post" action="/todos?filter={{.View.Filter}}">
  <input name="title" placeholder="What needs to be done?" required>
  <textarea name="description" placeholder="Description"></textarea>
  <select name="priority">{{range .Priorities}}<option value="{{.}}"{{if eq . "medium"}} selected{{end}}>{{.}}</option>{{end}}</select>
  <button>Add Todo</button>
</form>

<nav>
{{$view := .View}}{{range .Filters}}
  <a href="/?filter={{.}}"{{if eq . $view.Filter}} class="active"{{end}}>{{.}} ({{filterCount $view .}})</a>
{{end}}
  <form method="post" action="/refresh?filter={{.View.Filter}}"><button>Reload</button></form>
</nav>

{{if not .View.Todos}}
  {{if eq .View.Filter "all"}}<p>No todos yet. Add your first todo to get started!</p>
  {{else}}<p>No {{.View.Filter}} todos. You have no {{.View.Filter}} todos at the moment.</p>{{end}}
{{else}}
<ul>
{{range .View.Todos}}
  <li class="priority-{{.Priority}}{{if .Completed}} completed{{end}}">
    <form method="post" action="/todos/{{.ID}}/toggle?filter={{$view.Filter}}">
      <button>{{if .Completed}}Undo{{else}}Done{{end}}</button>
    </form>
    <strong>{{.Title}}</strong> <span>{{.Priority}} priority</span> <small>{{date .}}</small>
    {{if .Description}}<p>{{.Description}}</p>{{end}}
    <details>
      <summary>Edit</summary>
      <form method="post" action="/todos/{{.ID}}/update?filter={{$view.Filter}}">
        <input name="title" value="{{.Title}}" required>
        <textarea name="description">{{.Description}}</textarea>
        {{$p := .Priority}}<select name="priority">{{range $.Priorities}}<option value="{{.}}"{{if eq . $p}} selected{{end}}>{{.}}</option>{{end}}</select>
        <button>Save</button>
      </form>
    </details>
    <form method="post" action="/todos/{{.ID}}/delete?filter={{$view.Filter}}"><button>Delete</button></form>
  </li>
{{end}}
</ul>
{{end}}
</body>
</html>
`))
