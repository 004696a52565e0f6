package email

import (
	"html/template"
	"strings"
	texttpl "text/template"
)

type WelcomeVars struct {
	FirstName string
	Email     string
	AppName   string
}

var welcomeHTML = template.Must(template.New("welcome_html").Parse(`<html>
<body style="font-family: sans-serif;">
  <h2>Bienvenido a {{.AppName}}{{if .FirstName}}, {{.FirstName}}{{end}}!</h2>
  <p>Tu cuenta <strong>{{.Email}}</strong> quedó lista. Ya podés iniciar sesión.</p>
</body>
</html>
`))

var welcomeTXT = texttpl.Must(texttpl.New("welcome_txt").Parse(`Bienvenido a {{.AppName}}{{if .FirstName}}, {{.FirstName}}{{end}}!

Tu cuenta {{.Email}} quedó lista. Ya podés iniciar sesión.
`))

// RenderWelcome arma el cuerpo html+txt del mail de bienvenida.
func RenderWelcome(vars WelcomeVars) (htmlBody, textBody string, err error) {
	var hb, tb strings.Builder
	if err = welcomeHTML.Execute(&hb, vars); err != nil {
		return "", "", err
	}
	if err = welcomeTXT.Execute(&tb, vars); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
