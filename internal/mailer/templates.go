package mailer

import (
	"bytes"
	"html/template"
)

var (
	verifyTmpl = template.Must(template.New("verify").Parse(
		`<p>Verify your email address to complete the signup and login into your account.</p>` +
			`<p>This link <b>expires in {{.TTL}}</b>.</p>` +
			`<p>Press <a href="{{.Link}}">here</a> to proceed.</p>`))

	resetTmpl = template.Must(template.New("reset").Parse(
		`<p>We heard that you lost the password.</p>` +
			`<p>Don't worry, use the link below to reset it.</p>` +
			`<p>This link <b>expires in {{.TTL}}</b>.</p>` +
			`<p>Press <a href="{{.Link}}">here</a> to proceed.</p>`))

	contactTmpl = template.Must(template.New("contact").Parse(
		`<div><h2>{{.FirstName}} - {{.LastName}}</h2>` +
			`<span>{{.Phone}}</span> | <span>{{.Email}}</span>` +
			`<p>{{.Message}}</p></div>`))
)

type linkData struct {
	Link string
	TTL  string
}

func VerificationEmail(to, link, ttl string) (Message, error) {
	body, err := render(verifyTmpl, linkData{Link: link, TTL: ttl})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Verify your email", HTML: body}, nil
}

func ResetEmail(to, link, ttl string) (Message, error) {
	body, err := render(resetTmpl, linkData{Link: link, TTL: ttl})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Password Reset", HTML: body}, nil
}

type Contact struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Message   string
}

// ContactEmail addresses the site inbox with a visitor's message.
func ContactEmail(inbox string, c Contact) (Message, error) {
	body, err := render(contactTmpl, c)
	if err != nil {
		return Message{}, err
	}
	return Message{To: inbox, Subject: "mail send from " + c.Phone, HTML: body}, nil
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
