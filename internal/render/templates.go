package render

const layoutTemplate = `{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.}}</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
</head>
<body>
<main class="container my-4" style="max-width: 860px">
{{end}}

{{define "foot"}}</main>
</body>
</html>
{{end}}

{{define "alert"}}{{if .}}<div id="gate-alert" class="alert alert-warning" role="alert">{{.}}</div>{{end}}{{end}}

{{define "likert"}}<div class="likert-group mb-3">
<p class="mb-1">{{.Statement}}</p>
<div class="d-flex justify-content-between">
{{- range .Options}}
<div class="form-check text-center">
<input class="form-check-input" type="radio" name="{{$.Name}}" id="{{.ID}}" value="{{.Value}}"{{if .Checked}} checked{{end}}>
<label class="form-check-label d-block small" for="{{.ID}}">{{.Label}}</label>
</div>
{{- end}}
</div>
</div>
{{end}}

{{define "trial"}}<div class="page{{if .Hidden}} d-none{{end}}" id="{{.ElementID}}" data-page-kind="trial" data-trial="{{.Number}}">
<h5 class="text-muted">Story {{.Number}}</h5>
<p class="story">{{.Trial.Story}}</p>
<p class="question fw-semibold">{{.Trial.Question}}</p>
{{- if .Choice}}
<div class="mcq-group">
{{- range .Choice.Options}}
<div class="form-check">
<input class="form-check-input" type="radio" name="{{$.Choice.Name}}" id="{{.ID}}" value="{{.Value}}"{{if .Checked}} checked{{end}}>
<label class="form-check-label" for="{{.ID}}">{{.Label}}</label>
</div>
{{- end}}
</div>
{{- else}}
<ul class="answers">
{{- range .Trial.Answers}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- range .Likert}}
{{template "likert" .}}
{{- end}}
{{- end}}
</div>
{{end}}

{{define "trials"}}{{range .}}{{template "trial" .}}{{end}}{{end}}
`

const documentTemplate = `{{template "head" .Title}}
<h1 class="h3 mb-3">{{.Title}}</h1>
<div class="progress mb-4" role="progressbar" aria-valuenow="{{.ProgressValue}}" aria-valuemin="0" aria-valuemax="100">
<div id="progress-bar" class="progress-bar" style="width: {{.ProgressWidth}}"></div>
</div>
{{template "alert" .Notice}}
<form method="post" action="{{.Action}}" id="survey-form">
<button type="submit" id="default-action" name="action" value="{{if .IsLast}}submit{{else}}next{{end}}" class="d-none" tabindex="-1" aria-hidden="true"></button>
<input type="hidden" name="consent_page" value="1">
<div id="trial-pages">
{{- range .Pages}}
{{- if eq .Kind "trial"}}
{{template "trial" .TrialPage}}
{{- else}}
<div class="page{{if .Hidden}} d-none{{end}}" id="{{.ElementID}}" data-page-kind="{{.Kind}}">
{{- if eq .Kind "consent"}}
<h4>Consent</h4>
<p>{{$.ConsentText}}</p>
<div class="form-check">
<input class="form-check-input" type="checkbox" name="consent" id="consent-checkbox" value="on"{{if $.Consent}} checked{{end}}>
<label class="form-check-label" for="consent-checkbox">I agree to take part in this study.</label>
</div>
{{- else if eq .Kind "instructions"}}
<h4>Instructions ({{.Number}}/{{$.InstructionCount}})</h4>
<p>{{.Text}}</p>
{{- else if eq .Kind "comprehension"}}
<h4>Comprehension check</h4>
{{- range $.Comprehension}}
<fieldset class="mb-3">
<legend class="fs-6">{{.Prompt}}</legend>
{{- $name := .Name}}
{{- range .Options}}
<div class="form-check form-check-inline">
<input class="form-check-input" type="radio" name="{{$name}}" id="{{.ID}}" value="{{.Value}}"{{if .Checked}} checked{{end}}>
<label class="form-check-label" for="{{.ID}}">{{.Label}}</label>
</div>
{{- end}}
</fieldset>
{{- end}}
{{- else if eq .Kind "exit"}}
<h4>About you</h4>
<div class="mb-3">
<label for="age" class="form-label">Age</label>
<input type="number" class="form-control" id="age" name="age" min="18" max="120" value="{{$.Demographics.Age}}">
</div>
<div class="mb-3">
<label for="gender" class="form-label">Gender</label>
<input type="text" class="form-control" id="gender" name="gender" value="{{$.Demographics.Gender}}">
</div>
<div class="mb-3">
<label for="race" class="form-label">Race</label>
<input type="text" class="form-control" id="race" name="race" value="{{$.Demographics.Race}}">
</div>
<div class="mb-3">
<label for="ethnicity" class="form-label">Ethnicity</label>
<input type="text" class="form-control" id="ethnicity" name="ethnicity" value="{{$.Demographics.Ethnicity}}">
</div>
{{- end}}
</div>
{{- end}}
{{- end}}
</div>
<div class="d-flex justify-content-between mt-4">
<button type="submit" name="action" value="prev" id="prev-btn" class="btn btn-outline-secondary{{if .IsFirst}} d-none{{end}}">Previous</button>
<button type="submit" name="action" value="next" id="next-btn" class="btn btn-primary{{if .IsLast}} d-none{{end}}"{{if not .CanAdvance}} aria-disabled="true" data-gate="closed"{{end}}>Next</button>
<button type="submit" name="action" value="submit" id="submit-btn" class="btn btn-success{{if not .IsLast}} d-none{{end}}">Submit</button>
</div>
</form>
{{template "foot"}}`

const errorTemplate = `{{template "head" "Study unavailable"}}
<div id="fatal-error" class="alert alert-danger" role="alert">
<h1 class="h4">Study unavailable</h1>
<p class="mb-0">{{.}}</p>
</div>
{{template "foot"}}`

const thankYouTemplate = `{{template "head" "Thank you"}}
<div id="thank-you" class="text-center">
<h1 class="h3">Thank you!</h1>
<p>Your answers have been submitted. You may now close this window.</p>
</div>
{{template "foot"}}`
