package email

const (
	subjectCustomerEstimate = "Votre estimation Chevalier Couvreur"
	subjectOperatorAlertFmt = "🔔 Nouveau lead: %s - %s$"
)
