/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"html/template"
	"io"
)

var joinTemplate = template.Must(template.New("join").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>quizbox</title></head>
<body>
<h1>quizbox</h1>
{{if .Prompt}}<p><strong>{{.Prompt}}</strong></p>{{end}}
{{if .Locked}}<p>Answers are locked until the next round.</p>{{end}}
<form method="post" action="{{.Prefix}}/">
<label>Name <input type="text" name="name" value="{{.Name}}"></label>
<label>Answer <input type="text" name="answer" value="{{.Answer}}"></label>
<button type="submit">Submit</button>
</form>
{{if .Name}}<p>Playing as {{.Name}}{{if .Answer}}, current answer: {{.Answer}}{{end}}</p>{{end}}
</body></html>
`))

var gameTemplate = template.Must(template.New("game").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>quizbox - game</title></head>
<body>
<h1>Game</h1>
{{if .Snap.Prompt}}<p><strong>{{.Snap.Prompt}}</strong></p>{{end}}
<p>{{.Snap.Totals.TotalPlayers}} players, {{.Snap.Totals.TotalAnswers}} answers in.
{{if .Snap.PlayerTurn}}Current turn: <strong>{{.Snap.PlayerTurn}}</strong>{{end}}</p>
<p>
<a href="{{.Prefix}}/next">Next turn</a>
<a href="{{.Prefix}}/toggle_lock">{{if .Snap.LockAnswers}}Unlock{{else}}Lock + reveal{{end}}</a>
<a href="{{.Prefix}}/clear">New round</a>
<a href="{{.Prefix}}/edit_players">Edit players</a>
<a href="{{.Prefix}}/qr">QR</a>
</p>
<form method="post" action="{{.Prefix}}/set_prompt">
<label>Prompt <input type="text" name="prompt" value="{{.Snap.Prompt}}"></label>
<button type="submit">Set</button>
</form>
<h2>Players</h2>
<table>
<tr><th>Name</th><th>Score</th><th></th></tr>
{{range .Snap.Players}}
<tr{{if not .Active}} style="opacity:0.5"{{end}}>
<td>{{.Name}}</td>
<td>{{.Score}}</td>
<td>
<form method="post" action="{{$.Prefix}}/increase_score?player_name={{.Name}}"><button>+1</button></form>
<form method="post" action="{{$.Prefix}}/decrease_score?player_name={{.Name}}"><button>-1</button></form>
<form method="post" action="{{$.Prefix}}/toggle_active?player_name={{.Name}}"><button>{{if .Active}}Out{{else}}In{{end}}</button></form>
</td>
</tr>
{{end}}
</table>
{{if .Snap.ShowAnswers}}
<h2>Answers</h2>
<table>
<tr><th>Answer</th><th></th></tr>
{{range .Snap.Answers}}
<tr{{if not .Active}} style="opacity:0.5"{{end}}>
<td>{{.Answer}}</td>
<td><form method="post" action="{{$.Prefix}}/toggle_answer?answer_name={{.Answer}}"><button>{{if .Active}}Out{{else}}In{{end}}</button></form></td>
</tr>
{{end}}
</table>
{{end}}
</body></html>
`))

var editTemplate = template.Must(template.New("edit").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>quizbox - edit players</title></head>
<body>
<h1>Edit players</h1>
<form method="post" action="{{.Prefix}}/edit_players">
<table>
<tr><th>Name</th><th>Turn</th></tr>
{{range .Players}}
<tr>
<td><input type="text" name="new_{{.Name}}" value="{{.Name}}"></td>
<td><input type="text" name="new_turn_{{.Name}}" value="{{.TurnIndex}}"></td>
</tr>
{{end}}
</table>
<button type="submit">Save</button>
</form>
{{range .Players}}
<form method="post" action="{{$.Prefix}}/delete_player?player_name={{.Name}}"><button>Delete {{.Name}}</button></form>
{{end}}
<p><a href="{{.Prefix}}/game">Back to game</a></p>
</body></html>
`))

func renderJoinPage(w io.Writer, cfg *Config, name, answer, prompt string, locked bool) {
	_ = joinTemplate.Execute(w, struct {
		Prefix string
		Name   string
		Answer string
		Prompt string
		Locked bool
	}{cfg.prefix, name, answer, prompt, locked})
}

func renderGamePage(w io.Writer, cfg *Config, snap Snapshot) {
	_ = gameTemplate.Execute(w, struct {
		Prefix string
		Snap   Snapshot
	}{cfg.prefix, snap})
}

func renderEditPage(w io.Writer, cfg *Config, players []PlayerInfo) {
	_ = editTemplate.Execute(w, struct {
		Prefix  string
		Players []PlayerInfo
	}{cfg.prefix, players})
}
