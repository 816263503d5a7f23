// Package notify dispatches onboarding emails and SMS through AWS. Sends are
// best effort: failures are logged and counted, never surfaced to callers.
package notify

import (
	"context"
	"fmt"
	"strings"

	"hospital-onboarding/internal/common/config"
	"hospital-onboarding/internal/common/logger"
	"hospital-onboarding/internal/common/metrics"
	"hospital-onboarding/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SESService is the SES surface used by the notifier, defined for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSService is the SNS surface used by the notifier, defined for mocking.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

const (
	TypeApplicationSubmitted = "APPLICATION_SUBMITTED"
	TypeStatusUpdate         = "STATUS_UPDATE"
	TypeContractForSigning   = "CONTRACT_FOR_SIGNING"
	TypeOnboardingComplete   = "ONBOARDING_COMPLETE"
)

type Notifier struct {
	cfg       config.NotificationConfig
	fromEmail string
	ses       SESService
	sns       SNSService
	templates map[string]map[string]string
	logger    logger.Logger
}

func New(cfg config.NotificationConfig, fromEmail string, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		cfg:       cfg,
		fromEmail: fromEmail,
		ses:       sesClient,
		sns:       snsClient,
		templates: defaultTemplates(),
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// ApplicationSubmitted confirms receipt to the applicant.
func (n *Notifier) ApplicationSubmitted(ctx context.Context, app *models.Application) {
	n.send(ctx, TypeApplicationSubmitted, app.OwnerEmail, app.OwnerPhone, false, map[string]interface{}{
		"ownerName":         app.OwnerFirstName,
		"hospitalName":      app.HospitalName,
		"applicationNumber": app.ApplicationNumber,
		"portalUrl":         n.cfg.PortalURL,
	})
}

// StatusUpdate informs the applicant of a status transition. Decisions go
// out over SMS as well.
func (n *Notifier) StatusUpdate(ctx context.Context, app *models.Application, previous models.ApplicationStatus) {
	highPriority := app.Status == models.StatusApproved || app.Status == models.StatusRejected

	data := map[string]interface{}{
		"ownerName":         app.OwnerFirstName,
		"hospitalName":      app.HospitalName,
		"applicationNumber": app.ApplicationNumber,
		"previousStatus":    string(previous),
		"newStatus":         string(app.Status),
		"portalUrl":         n.cfg.PortalURL,
	}
	if app.RejectionReason != "" {
		data["reason"] = app.RejectionReason
	}

	n.send(ctx, TypeStatusUpdate, app.OwnerEmail, app.OwnerPhone, highPriority, data)
}

// ContractForSigning asks the hospital side to review and sign.
func (n *Notifier) ContractForSigning(ctx context.Context, app *models.Application, contract *models.Contract) {
	n.send(ctx, TypeContractForSigning, app.OwnerEmail, app.OwnerPhone, true, map[string]interface{}{
		"ownerName":      app.OwnerFirstName,
		"hospitalName":   app.HospitalName,
		"contractNumber": contract.ContractNumber,
		"contractTitle":  contract.Title,
		"portalUrl":      n.cfg.PortalURL,
	})
}

// OnboardingComplete announces activation of the hospital account.
func (n *Notifier) OnboardingComplete(ctx context.Context, app *models.Application, hospital *models.Hospital) {
	n.send(ctx, TypeOnboardingComplete, app.OwnerEmail, app.OwnerPhone, true, map[string]interface{}{
		"ownerName":    app.OwnerFirstName,
		"hospitalName": hospital.Name,
		"portalUrl":    n.cfg.PortalURL,
	})
}

func (n *Notifier) send(ctx context.Context, notificationType, email, phone string, highPriority bool, data map[string]interface{}) {
	template, exists := n.templates[notificationType]
	if !exists {
		n.logger.Error("template not found", map[string]interface{}{"type": notificationType})
		return
	}

	subject := renderTemplate(template["subject"], data)
	body := renderTemplate(template["body"], data)

	if n.cfg.EmailEnabled && n.ses != nil && email != "" {
		if err := n.sendEmail(ctx, email, subject, body); err != nil {
			n.logger.Error("email send failed", map[string]interface{}{
				"error": err,
				"type":  notificationType,
			})
			metrics.NotificationsSent.WithLabelValues("email", "failed").Inc()
		} else {
			metrics.NotificationsSent.WithLabelValues("email", "sent").Inc()
		}
	}

	if n.cfg.SMSEnabled && n.sns != nil && phone != "" && highPriority {
		if err := n.sendSMS(ctx, phone, body); err != nil {
			n.logger.Error("SMS send failed", map[string]interface{}{
				"error": err,
				"type":  notificationType,
			})
			metrics.NotificationsSent.WithLabelValues("sms", "failed").Inc()
		} else {
			metrics.NotificationsSent.WithLabelValues("sms", "sent").Inc()
		}
	}
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.fromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, to, message string) error {
	_, err := n.sns.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

// renderTemplate substitutes {{key}} placeholders; unknown placeholders are
// removed rather than left in the output.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}

func defaultTemplates() map[string]map[string]string {
	return map[string]map[string]string{
		TypeApplicationSubmitted: {
			"subject": "Application Received: {{applicationNumber}}",
			"body": "Dear {{ownerName}},\n\nYour onboarding application for {{hospitalName}} has been received. " +
				"Your application number is {{applicationNumber}}. Track progress at {{portalUrl}}.",
		},
		TypeStatusUpdate: {
			"subject": "Application {{applicationNumber}}: {{newStatus}}",
			"body": "Dear {{ownerName}},\n\nThe status of your application for {{hospitalName}} changed from " +
				"{{previousStatus}} to {{newStatus}}. {{reason}}\n\nDetails: {{portalUrl}}.",
		},
		TypeContractForSigning: {
			"subject": "Contract Ready for Signature: {{contractNumber}}",
			"body": "Dear {{ownerName}},\n\nThe partnership contract \"{{contractTitle}}\" for {{hospitalName}} " +
				"is ready for your signature. Review and sign at {{portalUrl}}.",
		},
		TypeOnboardingComplete: {
			"subject": "Welcome Aboard: {{hospitalName}} Is Live",
			"body": "Dear {{ownerName}},\n\n{{hospitalName}} is now an active partner facility. " +
				"Sign in at {{portalUrl}} to get started.",
		},
	}
}
