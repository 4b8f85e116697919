package web

import "html/template"

var pageTemplates = template.Must(template.New("pages").Parse(`
{{define "head"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="openid.server" href="{{.Endpoint}}">
<link rel="openid2.provider" href="{{.Endpoint}}">
<meta http-equiv="X-XRDS-Location" content="{{.Yadis}}">
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{end}}

{{define "foot"}}</body>
</html>
{{end}}

{{define "index"}}{{template "head" .}}
<p>This is an OpenID identity page.</p>
<p>Identity URL: <code>{{.Identity}}</code></p>
<p>Endpoint: <code>{{.Endpoint}}</code></p>
<ul>
{{if .LoggedIn}}
<li><a href="/account/trusted">Trusted sites</a></li>
<li><a href="/account/change_password">Change password</a></li>
<li><a href="/account/logout">Log out</a></li>
{{else}}
<li><a href="/account/login">Log in</a></li>
{{end}}
</ul>
{{template "foot" .}}{{end}}

{{define "login"}}{{template "head" .}}
<form method="post" action="/account/login">
<input type="hidden" name="return_to" value="{{.ReturnTo}}">
<label>Password: <input type="password" name="password" autofocus></label>
<button type="submit">Log in</button>
</form>
{{template "foot" .}}{{end}}

{{define "password"}}{{template "head" .}}
<form method="post" action="/account/change_password">
<p><label>New password: <input type="password" name="password" autofocus></label></p>
<p><label>Confirm: <input type="password" name="confirm"></label></p>
<button type="submit">Change password</button>
</form>
{{template "foot" .}}{{end}}

{{define "trusted"}}{{template "head" .}}
{{if .Entries}}
<table>
<tr><th>Trust root</th><th></th></tr>
{{range .Entries}}
<tr>
<td><code>{{.URL}}</code></td>
<td><a href="/account/trusted/delete?token={{.Token}}">remove</a></td>
</tr>
{{end}}
</table>
{{else}}
<p>No trusted sites yet.</p>
{{end}}
<p><a href="/account">Back</a></p>
{{template "foot" .}}{{end}}

{{define "trusted_confirm"}}{{template "head" .}}
<p>Stop trusting <code>{{.Entry.URL}}</code>?</p>
<form method="post" action="/account/trusted/delete">
<input type="hidden" name="token" value="{{.Entry.Token}}">
<button type="submit">Remove</button>
<a href="/account/trusted">Cancel</a>
</form>
{{template "foot" .}}{{end}}

{{define "verify"}}{{template "head" .}}
<p>The site <code>{{.TrustRoot}}</code> wants to verify that you control
<code>{{.Identity}}</code>.</p>
{{if .Profile}}
<p>It also asks for the following profile data:</p>
<table>
{{range .Profile}}<tr><th>{{.Label}}</th><td>{{.Value}}</td></tr>
{{end}}</table>
{{end}}
<form method="post" action="/account/decision">
{{range $name, $values := .Query}}{{range $values}}
<input type="hidden" name="{{$name}}" value="{{.}}">
{{end}}{{end}}
<button type="submit" name="approve" value="1">Approve once</button>
<button type="submit" name="always" value="1">Always approve</button>
<button type="submit" name="decline" value="1">Decline</button>
</form>
{{template "foot" .}}{{end}}
`))
