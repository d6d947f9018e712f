package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

var amountPrinter = message.NewPrinter(language.CanadianFrench)

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     template.URL
	Footer     string
}

// CustomerEstimateData feeds the confirmation sent to the submitter.
type CustomerEstimateData struct {
	FullName     string
	Low          int
	Mid          int
	High         int
	Timeline     string
	CompanyPhone string
	PhoneDisplay string
}

// OperatorAlertData feeds the internal new-lead alert.
type OperatorAlertData struct {
	FullName             string
	Phone                string
	Email                string
	Address              string
	ProjectType          string
	PropertyType         string
	RoofType             string
	RoofAge              string
	AccessDifficulty     string
	Issues               []string
	PreferredContactTime string
	Mid                  int
	Timeline             string
	PhotoCount           int
	DashboardURL         string
}

type customerEstimateEmailData struct {
	baseEmailData
	CustomerEstimateData
	LowFormatted  string
	MidFormatted  string
	HighFormatted string
}

type operatorAlertEmailData struct {
	baseEmailData
	OperatorAlertData
	ProjectLabel string
	MidFormatted string
}

var projectTypeLabels = map[string]string{
	"residential": "🏠 Résidentiel",
	"commercial":  "🏢 Commercial",
	"emergency":   "🚨 Urgence",
}

// RenderCustomerEstimate builds the subject and body of the customer confirmation.
func RenderCustomerEstimate(d CustomerEstimateData) (Message, error) {
	html, err := renderEmailTemplate("customer_estimate.html", customerEstimateEmailData{
		baseEmailData: baseEmailData{
			Title:      subjectCustomerEstimate,
			Heading:    "Chevalier Couvreur",
			Subheading: "Votre estimation personnalisée",
			CTALabel:   "Réserver Inspection Gratuite",
			CTAURL:     template.URL("tel:" + d.CompanyPhone),
			Footer:     "Chevalier Couvreur - 20 ans d'expertise",
		},
		CustomerEstimateData: d,
		LowFormatted:         FormatAmount(d.Low),
		MidFormatted:         FormatAmount(d.Mid),
		HighFormatted:        FormatAmount(d.High),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: subjectCustomerEstimate, HTML: html}, nil
}

// RenderOperatorAlert builds the subject and body of the operator alert.
func RenderOperatorAlert(d OperatorAlertData) (Message, error) {
	label, ok := projectTypeLabels[d.ProjectType]
	if !ok {
		label = d.ProjectType
	}
	mid := FormatAmount(d.Mid)
	html, err := renderEmailTemplate("operator_alert.html", operatorAlertEmailData{
		baseEmailData: baseEmailData{
			Title:      "Nouveau lead",
			Heading:    "🔔 Nouveau Lead Reçu!",
			Subheading: label,
			CTALabel:   "Ouvrir le dashboard",
			CTAURL:     template.URL(d.DashboardURL),
		},
		OperatorAlertData: d,
		ProjectLabel:      label,
		MidFormatted:      mid,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		FromName: "Système Chevalier",
		Subject:  fmt.Sprintf(subjectOperatorAlertFmt, d.FullName, mid),
		HTML:     html,
	}, nil
}

// FormatAmount groups digits the way fr-CA readers expect, e.g. "8 349".
func FormatAmount(amount int) string {
	return amountPrinter.Sprintf("%d", amount)
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").Funcs(template.FuncMap{
		"orUnspecified": orUnspecified,
	}).ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func orUnspecified(value string) string {
	if value == "" {
		return "Non spécifié"
	}
	return value
}
