package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-onboarding/internal/common/config"
	"hospital-onboarding/internal/common/logger"
	"hospital-onboarding/internal/models"
)

type fakeSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{}, nil
}

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

func testNotifier(t *testing.T, sesClient *fakeSES, snsClient *fakeSNS) *Notifier {
	t.Helper()
	cfg := config.NotificationConfig{
		EmailEnabled: true,
		SMSEnabled:   true,
		PortalURL:    "https://portal.example.com",
	}
	return New(cfg, "noreply@example.com", sesClient, snsClient, logger.NewTestLogger(t))
}

func sampleApp() *models.Application {
	return &models.Application{
		ApplicationNumber: "APP-2026-08-000042",
		Status:            models.StatusSubmitted,
		HospitalName:      "Sunrise Hospital",
		OwnerFirstName:    "Amina",
		OwnerEmail:        "amina@sunrise.example.com",
		OwnerPhone:        "+2348012345678",
	}
}

func TestApplicationSubmittedSendsEmailOnly(t *testing.T) {
	sesClient := &fakeSES{}
	snsClient := &fakeSNS{}
	n := testNotifier(t, sesClient, snsClient)

	n.ApplicationSubmitted(context.Background(), sampleApp())

	require.Len(t, sesClient.inputs, 1)
	assert.Empty(t, snsClient.inputs, "submission confirmations are not high priority")

	input := sesClient.inputs[0]
	assert.Equal(t, []string{"amina@sunrise.example.com"}, input.Destination.ToAddresses)
	assert.Contains(t, *input.Message.Subject.Data, "APP-2026-08-000042")
	assert.Contains(t, *input.Message.Body.Text.Data, "Sunrise Hospital")
}

func TestDecisionStatusUpdateSendsSMS(t *testing.T) {
	sesClient := &fakeSES{}
	snsClient := &fakeSNS{}
	n := testNotifier(t, sesClient, snsClient)

	app := sampleApp()
	app.Status = models.StatusApproved
	n.StatusUpdate(context.Background(), app, models.StatusUnderReview)

	require.Len(t, sesClient.inputs, 1)
	require.Len(t, snsClient.inputs, 1)
	assert.Equal(t, "+2348012345678", *snsClient.inputs[0].PhoneNumber)
	assert.Contains(t, *sesClient.inputs[0].Message.Subject.Data, "APPROVED")
}

func TestRejectionIncludesReason(t *testing.T) {
	sesClient := &fakeSES{}
	n := testNotifier(t, sesClient, &fakeSNS{})

	app := sampleApp()
	app.Status = models.StatusRejected
	app.RejectionReason = "missing operating license"
	n.StatusUpdate(context.Background(), app, models.StatusUnderReview)

	require.Len(t, sesClient.inputs, 1)
	assert.Contains(t, *sesClient.inputs[0].Message.Body.Text.Data, "missing operating license")
}

func TestSendFailuresAreSwallowed(t *testing.T) {
	sesClient := &fakeSES{err: errors.New("ses unavailable")}
	snsClient := &fakeSNS{err: errors.New("sns unavailable")}
	n := testNotifier(t, sesClient, snsClient)

	app := sampleApp()
	app.Status = models.StatusApproved

	assert.NotPanics(t, func() {
		n.StatusUpdate(context.Background(), app, models.StatusUnderReview)
	})
}

func TestRenderTemplateRemovesUnknownPlaceholders(t *testing.T) {
	out := renderTemplate("Hello {{name}}, ref {{missing}} done", map[string]interface{}{
		"name": "Amina",
	})
	assert.Equal(t, "Hello Amina, ref  done", out)
}
