package web

import (
	"fmt"
	"html/template"
	"io"

	"github.com/roach88/todolists/internal/list"
)

type templateSet struct {
	pages map[string]*template.Template
}

func newTemplateSet() *templateSet {
	funcs := template.FuncMap{
		"isListCompleted":     list.IsListCompleted,
		"listClass":           list.ListClass,
		"todosCount":          list.TodosCount,
		"todosRemainingCount": list.TodosRemainingCount,
		"isTodoCompleted":     list.IsTodoCompleted,
		"maxNameLength":       func() int { return list.MaxNameLength },
	}
	layout := template.Must(template.New("layout").Funcs(funcs).Parse(layoutTemplate))

	pages := map[string]string{
		"lists":     listsTemplate,
		"list":      listTemplate,
		"new_list":  newListTemplate,
		"edit_list": editListTemplate,
	}
	set := &templateSet{pages: make(map[string]*template.Template, len(pages))}
	for name, src := range pages {
		set.pages[name] = template.Must(template.Must(layout.Clone()).Parse(src))
	}
	return set
}

func (ts *templateSet) Render(w io.Writer, page string, data pageData) error {
	tmpl, ok := ts.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

const layoutTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} - Todo Lists</title>
  <style>
    body {
      margin: 0 auto;
      max-width: 720px;
      padding: 24px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #2b2520;
    }
    header a {
      color: inherit;
      text-decoration: none;
    }
    .flash {
      padding: 8px 12px;
      border-radius: 6px;
      margin-bottom: 8px;
    }
    .flash.success {
      background: #e5f4e3;
    }
    .flash.error {
      background: #f8e1de;
    }
    ul.lists, ul.todos {
      list-style: none;
      padding: 0;
    }
    ul.lists li, ul.todos li {
      display: flex;
      justify-content: space-between;
      align-items: center;
      padding: 8px 0;
      border-bottom: 1px solid #e6ded2;
    }
    .complete a, li.complete span {
      color: #8c8277;
      text-decoration: line-through;
    }
    form.inline {
      display: inline;
    }
  </style>
</head>
<body>
  <header><h1><a href="/lists">Todo Lists</a></h1></header>
  {{range .Flashes}}
  <div class="flash {{.Kind}}">{{.Message}}</div>
  {{end}}
  <main>
  {{template "content" .}}
  </main>
</body>
</html>
`

const listsTemplate = `{{define "content"}}
<p><a href="/lists/new">New List</a></p>
{{if .Lists}}
<ul class="lists">
  {{range .Lists}}
  <li class="{{listClass .}}">
    <a href="/lists/{{.ID}}">{{.Name}}</a>
    <span>{{todosRemainingCount .}} / {{todosCount .}}</span>
  </li>
  {{end}}
</ul>
{{else}}
<p>You don't have any todo lists.</p>
{{end}}
{{end}}`

const listTemplate = `{{define "content"}}
{{with .List}}
<section class="{{listClass .}}">
  <h2>{{.Name}}</h2>
  <p><a href="/lists/{{.ID}}/edit">Edit list</a></p>
  {{if and .Todos (not (isListCompleted .))}}
  <form class="inline" action="/lists/{{.ID}}/complete_all" method="post">
    <button type="submit">Complete All</button>
  </form>
  {{end}}
  <ul class="todos">
    {{$listID := .ID}}
    {{range .Todos}}
    <li{{if isTodoCompleted .}} class="complete"{{end}}>
      <form class="inline" action="/lists/{{$listID}}/todos/{{.ID}}" method="post">
        <input type="hidden" name="completed" value="{{if .Completed}}False{{else}}True{{end}}">
        <button type="submit">{{if .Completed}}Undo{{else}}Done{{end}}</button>
      </form>
      <span>{{.Name}}</span>
      <form class="inline delete" action="/lists/{{$listID}}/todos/{{.ID}}/delete" method="post">
        <button type="submit">Delete</button>
      </form>
    </li>
    {{end}}
  </ul>
</section>
<form action="/lists/{{.ID}}/todos" method="post">
  <label for="todo">Enter a new todo item:</label>
  <input id="todo" name="todo" type="text" maxlength="{{maxNameLength}}" value="{{$.TodoName}}">
  <button type="submit">Add</button>
</form>
{{end}}
{{end}}`

const newListTemplate = `{{define "content"}}
<form action="/lists" method="post">
  <label for="list_name">Enter the name for your new list:</label>
  <input id="list_name" name="list_name" type="text" maxlength="{{maxNameLength}}" value="{{.ListName}}">
  <button type="submit">Save</button>
  <a href="/lists">Cancel</a>
</form>
{{end}}`

const editListTemplate = `{{define "content"}}
{{with .List}}
<form action="/lists/{{.ID}}" method="post">
  <label for="list_name">Enter the new name for the list:</label>
  <input id="list_name" name="list_name" type="text" maxlength="{{maxNameLength}}" value="{{$.ListName}}">
  <button type="submit">Save</button>
  <a href="/lists/{{.ID}}">Cancel</a>
</form>
<form action="/lists/{{.ID}}/delete" method="post">
  <button type="submit">Delete List</button>
</form>
{{end}}
{{end}}`
